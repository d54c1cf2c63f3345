// Package server wires the activation gate into a running process: storage,
// registration guard, notification sender, the gRPC API and the HTTP login
// form. It handles graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/logging"
	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	"github.com/dmitrijs2005/activationgate/internal/server/config"
	"github.com/dmitrijs2005/activationgate/internal/server/guard"
	"github.com/dmitrijs2005/activationgate/internal/server/mailer"
	"github.com/dmitrijs2005/activationgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/activationgate/internal/server/services"
	"github.com/dmitrijs2005/activationgate/internal/server/web"

	gs "github.com/dmitrijs2005/activationgate/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	gate        *activation.Gate
	userService *services.UserService
	closers     []io.Closer
}

func openRepositoryManager(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.Storage {
	case config.StorageMemory:
		return repomanager.NewInMemoryRepositoryManager(), nil
	case config.StoragePostgres:
		rm, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := rm.RunMigrations(ctx); err != nil {
			_ = rm.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return rm, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", c.Storage)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	rm, err := openRepositoryManager(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.repomanager = rm
	app.closers = append(app.closers, rm)

	var rg activation.RegistrationGuard
	if c.RedisURI != "" {
		client, err := guard.Connect(ctx, c.RedisURI)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.closers = append(app.closers, client)
		rg = guard.NewRedis(client, c.RegistrationGuardTTL)
	} else {
		rg = guard.NewMemory(c.RegistrationGuardTTL)
	}

	var notifier activation.Notifier
	if c.AMQPURL != "" {
		sender := mailer.NewAMQPSender(c.AMQPURL, c.NotificationQueue)
		app.closers = append(app.closers, sender)
		notifier = sender
	} else {
		logger.Warn(ctx, "no notification queue configured, mails are logged only")
		notifier = mailer.NewLogSender(logger)
	}

	app.gate = activation.New(services.NewActivationDirectory(rm),
		activation.WithRegistrationGuard(rg),
		activation.WithNotifier(notifier),
		activation.WithMailSettings(activation.MailSettings{
			SiteName:   c.SiteName,
			LoginURL:   c.LoginURL,
			AdminEmail: c.AdminEmail,
		}),
		activation.WithBatchSize(c.BatchSize),
		activation.WithLogger(logger),
	)
	app.userService = services.NewUserService(rm, app.gate, c, logger)

	if c.AdminUserName != "" && c.AdminPassword != "" {
		email := c.AdminEmail
		if email == "" {
			email = c.AdminUserName + "@localhost"
		}
		if _, err := app.userService.EnsureAdmin(ctx, services.RegisterRequest{
			UserName: c.AdminUserName,
			Email:    email,
			Password: c.AdminPassword,
		}); err != nil {
			app.Close()
			return nil, fmt.Errorf("admin bootstrap error: %w", err)
		}
	}

	if err := app.installBackfill(ctx); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// installBackfill runs the install lifecycle step when it is enabled. It is
// repeatable, so leaving the option on across restarts is harmless.
func (app *App) installBackfill(ctx context.Context) error {
	if !app.config.InstallBackfill {
		return nil
	}
	if _, err := app.gate.InstallBackfill(ctx); err != nil {
		return fmt.Errorf("install backfill error: %w", err)
	}
	return nil
}

// Close releases storage, redis and queue connections in reverse order.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.gate, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := web.NewHandler(app.userService, app.config.SiteName, app.config.AccessTokenValidityDuration, app.logger)
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           h.Router(app.config.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}

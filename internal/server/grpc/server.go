// Package grpc serves the ActivationService API: registration and login for
// clients, plus the administrative activation-code methods.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/activationgate/internal/logging"
	"github.com/dmitrijs2005/activationgate/internal/rpc"
	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	"github.com/dmitrijs2005/activationgate/internal/server/models"
	"github.com/dmitrijs2005/activationgate/internal/server/services"
	"google.golang.org/grpc"
)

// UserService is the subset of services.UserService the server calls.
type UserService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req services.LoginRequest) (*services.Session, error)
	UserIDByName(ctx context.Context, userName string) (string, error)
}

// ActivationAdmin is the administrative surface of activation.Gate.
type ActivationAdmin interface {
	GetToken(ctx context.Context, accountID string, actor activation.Actor) (activation.State, error)
	SetToken(ctx context.Context, accountID, value string, actor activation.Actor) error
	ListAccounts(ctx context.Context, actor activation.Actor, q activation.ListQuery) ([]activation.AccountState, error)
	InstallBackfill(ctx context.Context) (activation.BulkReport, error)
	UninstallCleanup(ctx context.Context) (activation.BulkReport, error)
}

type GRPCServer struct {
	address   string
	users     UserService
	admin     ActivationAdmin
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us UserService, admin ActivationAdmin, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		admin:     admin,
		jwtSecret: []byte(secretKey),
	}
}

// newServer builds the grpc.Server with the service and interceptors
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterActivationServiceServer(srv, s)
	return srv
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

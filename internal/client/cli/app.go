package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/activationgate/internal/client/client"
	"github.com/dmitrijs2005/activationgate/internal/client/config"
)

type App struct {
	config   *config.Config
	client   client.Client
	reader   *bufio.Reader
	out      io.Writer
	userName string
	admin    bool
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewActivationClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return newApp(c, apiClient, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, in *bufio.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, reader: in, out: out}
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	fmt.Fprintln(a.out, "Activation admin console (type 'help' for commands)")

	if a.config.UserName != "" {
		if err := a.Login(ctx, []string{a.config.UserName}); err != nil {
			a.report(err)
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	switch {
	case !a.isLoggedIn():
		return "(not logged in)"
	case a.admin:
		return fmt.Sprintf("(%s admin)", a.userName)
	default:
		return fmt.Sprintf("(%s)", a.userName)
	}
}

// call bounds a single RPC by the configured request timeout.
func (a *App) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) report(err error) {
	fmt.Fprintln(a.out, "Error:", explain(err))
}

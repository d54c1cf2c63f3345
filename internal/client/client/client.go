package client

import (
	"context"

	"github.com/dmitrijs2005/activationgate/internal/rpc"
)

// Client is the admin surface of the activation service.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Login(ctx context.Context, userName, password, activationCode string) (*rpc.LoginResponse, error)
	GetActivationCode(ctx context.Context, account rpc.AccountRef) (*rpc.ActivationCodeResponse, error)
	SetActivationCode(ctx context.Context, account rpc.AccountRef, value string) error
	ListAccounts(ctx context.Context, req rpc.ListAccountsRequest) ([]rpc.AccountInfo, error)
	InstallBackfill(ctx context.Context) (*rpc.BulkResponse, error)
	UninstallCleanup(ctx context.Context) (*rpc.BulkResponse, error)
}

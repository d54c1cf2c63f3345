package repomanager

import (
	"context"

	"github.com/dmitrijs2005/activationgate/internal/server/repositories/usermeta"
	"github.com/dmitrijs2005/activationgate/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to one connection or
// transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	UserMeta() usermeta.Repository
	// WithTx runs fn with a manager whose repositories share one
	// transaction. Calls on a manager that is already inside a transaction
	// reuse it.
	WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error
	Close() error
}

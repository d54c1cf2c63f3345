package repomanager

import (
	"context"

	"github.com/dmitrijs2005/activationgate/internal/server/repositories/memory"
	"github.com/dmitrijs2005/activationgate/internal/server/repositories/usermeta"
	"github.com/dmitrijs2005/activationgate/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves both repositories from one memory.Store.
// WithTx gives no isolation; each store call is atomic on its own.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: memory.NewStore()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Users() users.Repository { return m.store }

func (m *InMemoryRepositoryManager) UserMeta() usermeta.Repository { return m.store }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	return fn(ctx, m)
}

func (m *InMemoryRepositoryManager) Close() error { return nil }

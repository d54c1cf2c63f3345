package users

import (
	"context"

	"github.com/dmitrijs2005/activationgate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// ListIDs returns up to limit user IDs greater than after, ascending.
	ListIDs(ctx context.Context, after string, limit int) ([]string, error)
	ListWithMeta(ctx context.Context, opts models.UserListOptions) ([]models.UserWithMeta, error)
}

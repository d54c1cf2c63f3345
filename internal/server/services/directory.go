package services

import (
	"context"

	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	"github.com/dmitrijs2005/activationgate/internal/server/models"
	"github.com/dmitrijs2005/activationgate/internal/server/repositories/repomanager"
)

// ActivationDirectory exposes the users and user_meta repositories to the
// activation gate. Bulk batches run in a repository transaction.
type ActivationDirectory struct {
	rm repomanager.RepositoryManager
}

func NewActivationDirectory(rm repomanager.RepositoryManager) *ActivationDirectory {
	return &ActivationDirectory{rm: rm}
}

func toAccount(u *models.User) *activation.Account {
	return &activation.Account{ID: u.ID, Login: u.UserName, Email: u.Email, Admin: u.IsAdmin}
}

func (d *ActivationDirectory) FindByLogin(ctx context.Context, login string) (*activation.Account, error) {
	u, err := d.rm.Users().GetUserByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

func (d *ActivationDirectory) FindByID(ctx context.Context, id string) (*activation.Account, error) {
	u, err := d.rm.Users().GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

func (d *ActivationDirectory) GetAttribute(ctx context.Context, accountID, key string) (string, bool, error) {
	return d.rm.UserMeta().Get(ctx, accountID, key)
}

func (d *ActivationDirectory) SetAttribute(ctx context.Context, accountID, key, value string) error {
	return d.rm.UserMeta().Set(ctx, accountID, key, value)
}

func (d *ActivationDirectory) AddAttribute(ctx context.Context, accountID, key, value string) (bool, error) {
	return d.rm.UserMeta().Add(ctx, accountID, key, value)
}

func (d *ActivationDirectory) DeleteAttribute(ctx context.Context, accountID, key string) (bool, error) {
	return d.rm.UserMeta().Delete(ctx, accountID, key)
}

func (d *ActivationDirectory) ListIDs(ctx context.Context, after string, limit int) ([]string, error) {
	return d.rm.Users().ListIDs(ctx, after, limit)
}

func (d *ActivationDirectory) ListAccounts(ctx context.Context, key string, q activation.ListQuery) ([]activation.AttributeRow, error) {
	sortBy := models.SortByUserName
	if q.SortBy == activation.SortByState {
		sortBy = models.SortByMetaState
	}

	rows, err := d.rm.Users().ListWithMeta(ctx, models.UserListOptions{
		MetaKey:   key,
		DoneValue: activation.ConsumedValue,
		SortBy:    sortBy,
		Desc:      q.Desc,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		return nil, err
	}

	out := make([]activation.AttributeRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, activation.AttributeRow{Account: *toAccount(&r.User), Value: r.Value, Recorded: r.HasValue})
	}
	return out, nil
}

// InBatch runs fn against a directory bound to a single transaction.
func (d *ActivationDirectory) InBatch(ctx context.Context, fn func(ctx context.Context, dir activation.Directory) error) error {
	return d.rm.WithTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		return fn(ctx, &ActivationDirectory{rm: m})
	})
}

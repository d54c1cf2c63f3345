package activation

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/activationgate/internal/common"
)

// AttributeKey is the per-account attribute holding the activation code.
const AttributeKey = "activation_code"

// Account is a user identity as seen by the gate.
type Account struct {
	ID    string
	Login string
	Email string
	Admin bool
}

// Directory is the user directory the gate runs against. Lookups report a
// missing account with common.ErrorNotFound.
type Directory interface {
	FindByLogin(ctx context.Context, login string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)

	GetAttribute(ctx context.Context, accountID, key string) (value string, ok bool, err error)
	SetAttribute(ctx context.Context, accountID, key, value string) error
	// AddAttribute stores value only when the account has no such attribute
	// yet and reports whether it did.
	AddAttribute(ctx context.Context, accountID, key, value string) (bool, error)
	DeleteAttribute(ctx context.Context, accountID, key string) (bool, error)

	// ListIDs pages through account IDs in ascending order, starting after
	// the given ID ("" for the first page).
	ListIDs(ctx context.Context, after string, limit int) ([]string, error)
	ListAccounts(ctx context.Context, key string, q ListQuery) ([]AttributeRow, error)
}

// Batcher is implemented by directories that can apply a group of writes
// atomically. Bulk operations use it for each page when available.
type Batcher interface {
	InBatch(ctx context.Context, fn func(ctx context.Context, dir Directory) error) error
}

// AttributeRow is an account joined with its (possibly missing) attribute.
type AttributeRow struct {
	Account  Account
	Value    string
	Recorded bool
}

// SortField selects the column used by ListAccounts.
type SortField string

const (
	SortByLogin SortField = "login"
	SortByState SortField = "state"
)

// ListQuery pages and sorts the admin account list. Sorting by state puts
// pending accounts first in ascending order; ties are broken by login.
type ListQuery struct {
	SortBy SortField
	Desc   bool
	Limit  int
	Offset int
}

// store translates between State and the legacy string attribute.
type store struct {
	dir Directory
}

func (s store) load(ctx context.Context, accountID string) (State, error) {
	raw, ok, err := s.dir.GetAttribute(ctx, accountID, AttributeKey)
	if err != nil {
		return State{}, fmt.Errorf("error reading activation state: %w", err)
	}
	return decodeState(raw, ok), nil
}

func (s store) save(ctx context.Context, accountID string, st State) error {
	if err := s.dir.SetAttribute(ctx, accountID, AttributeKey, encodeState(st)); err != nil {
		return fmt.Errorf("error writing activation state: %w", err)
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return ErrUnknownUser
	}
	return err
}

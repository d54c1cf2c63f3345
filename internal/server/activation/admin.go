package activation

import (
	"context"
	"fmt"
)

// Actor is whoever calls an administrative operation.
type Actor struct {
	ID    string
	Admin bool
}

// AccountState is one line of the admin account list.
type AccountState struct {
	Account Account
	State   State
}

// SetToken overwrites the stored activation value verbatim. "active"
// force-activates the account; any other string becomes its pending code.
func (g *Gate) SetToken(ctx context.Context, accountID, value string, actor Actor) error {
	if !actor.Admin {
		return ErrUnauthorized
	}

	if _, err := g.dir.FindByID(ctx, accountID); err != nil {
		return lookupError(err)
	}

	if err := g.dir.SetAttribute(ctx, accountID, AttributeKey, value); err != nil {
		return fmt.Errorf("error writing activation state: %w", err)
	}

	g.logger.Info(ctx, "activation code overridden",
		"account_id", accountID, "actor_id", actor.ID, "state", decodeState(value, true).String())
	return nil
}

// GetToken returns the activation state of an account for an operator.
func (g *Gate) GetToken(ctx context.Context, accountID string, actor Actor) (State, error) {
	if !actor.Admin {
		return State{}, ErrUnauthorized
	}

	if _, err := g.dir.FindByID(ctx, accountID); err != nil {
		return State{}, lookupError(err)
	}

	return g.store.load(ctx, accountID)
}

// ListAccounts returns a page of accounts with their activation state.
func (g *Gate) ListAccounts(ctx context.Context, actor Actor, q ListQuery) ([]AccountState, error) {
	if !actor.Admin {
		return nil, ErrUnauthorized
	}

	if q.SortBy == "" {
		q.SortBy = SortByLogin
	}
	if q.SortBy != SortByLogin && q.SortBy != SortByState {
		return nil, fmt.Errorf("unknown sort field %q", q.SortBy)
	}
	if q.Limit <= 0 || q.Limit > g.batchSize {
		q.Limit = g.batchSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	rows, err := g.dir.ListAccounts(ctx, AttributeKey, q)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}

	out := make([]AccountState, 0, len(rows))
	for _, r := range rows {
		out = append(out, AccountState{Account: r.Account, State: decodeState(r.Value, r.Recorded)})
	}
	return out, nil
}

package activation

import (
	"context"
	"fmt"
)

// RegistrationGuard deduplicates registration events. Claim returns true
// the first time it sees an account.
type RegistrationGuard interface {
	Claim(ctx context.Context, accountID string) (bool, error)
}

type allowAllGuard struct{}

func (allowAllGuard) Claim(context.Context, string) (bool, error) { return true, nil }

// OnRegister issues a pending code for a newly registered account and mails
// it. A repeated event for the same account leaves the stored code alone and
// sends nothing; the current state is returned in that case.
//
// The code is stored before any mail is attempted and mail failures are only
// logged.
func (g *Gate) OnRegister(ctx context.Context, accountID string) (State, error) {
	claimed, err := g.guard.Claim(ctx, accountID)
	if err != nil {
		// The insert-if-absent below still protects the stored code.
		g.logger.Warn(ctx, "registration guard unavailable", "account_id", accountID, "error", err)
		claimed = true
	}
	if !claimed {
		g.logger.Info(ctx, "duplicate registration event ignored", "account_id", accountID)
		return g.store.load(ctx, accountID)
	}

	code := g.gen.Generate()
	added, err := g.dir.AddAttribute(ctx, accountID, AttributeKey, code)
	if err != nil {
		return State{}, fmt.Errorf("error storing activation code: %w", err)
	}
	if !added {
		g.logger.Info(ctx, "activation code already issued", "account_id", accountID)
		return g.store.load(ctx, accountID)
	}

	g.logger.Info(ctx, "activation code issued", "account_id", accountID)

	account, err := g.dir.FindByID(ctx, accountID)
	if err != nil {
		g.logger.Warn(ctx, "activation mail skipped", "account_id", accountID, "error", err)
		return Pending(code), nil
	}
	g.notifyRegistration(ctx, *account, code)

	return Pending(code), nil
}

// Package activation implements the activation gate: a login check that,
// for freshly registered accounts, requires the one-time code mailed at
// registration in addition to the password.
//
// A login runs in two phases. Authenticate is called before the password is
// verified and returns a verdict (defer, allow or deny). Once the login has
// been fully accepted the caller invokes CommitLogin, which marks the code as
// consumed. Registration, the admin override and the bulk install/uninstall
// operations live alongside.
//
// Writes to the activation attribute are last-writer-wins: a concurrent
// CommitLogin and SetToken on one account may overwrite each other. Activation
// happens once per account, so this is accepted.
package activation

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/logging"
)

// Verdict is the gate's decision for one login attempt.
type Verdict uint8

const (
	// VerdictDefer leaves the decision to the password check.
	VerdictDefer Verdict = iota
	// VerdictAllow lets the login proceed to the password check with the
	// code accepted.
	VerdictAllow
	// VerdictDeny rejects the attempt; Result.Err says why.
	VerdictDeny
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllow:
		return "allow"
	case VerdictDeny:
		return "deny"
	default:
		return "defer"
	}
}

// Phase is how far an attempt got through the gate.
type Phase uint8

const (
	PhaseAwaitingCredentials Phase = iota
	PhaseCredentialsValidated
	PhaseTokenChecked
)

// LoginAttempt is the validated form input of a login.
type LoginAttempt struct {
	Login    string
	Password string
	Code     string
}

// Result is the outcome of Authenticate.
type Result struct {
	Verdict   Verdict
	Phase     Phase
	AccountID string
	Err       error

	// SkipPasswordCheck is set on a code mismatch: the password must not be
	// verified for this attempt at all.
	SkipPasswordCheck bool

	// CommitRequired is set when a pending code matched; CommitLogin must
	// follow once the login is accepted.
	CommitRequired bool
}

// Undecided is the result to pass as previous when nothing upstream has
// decided yet.
func Undecided() Result { return Result{} }

func (r Result) IsDenied() bool  { return r.Verdict == VerdictDeny }
func (r Result) IsAllowed() bool { return r.Verdict == VerdictAllow }

func deny(phase Phase, accountID string, err error) Result {
	return Result{Verdict: VerdictDeny, Phase: phase, AccountID: accountID, Err: err}
}

// Gate is the activation gate. Construct it once in the composition root
// with New.
type Gate struct {
	dir       Directory
	store     store
	gen       Generator
	guard     RegistrationGuard
	notifier  Notifier
	mail      MailSettings
	hooks     NotificationHooks
	batchSize int
	// notifyTimeout bounds each registration mail send.
	notifyTimeout time.Duration
	logger        logging.Logger
}

// Option customizes a Gate.
type Option func(*Gate)

// WithGenerator replaces the crypto/rand code generator.
func WithGenerator(g Generator) Option {
	return func(gt *Gate) {
		if g != nil {
			gt.gen = g
		}
	}
}

// WithRegistrationGuard sets the guard deduplicating registration events.
func WithRegistrationGuard(guard RegistrationGuard) Option {
	return func(gt *Gate) {
		if guard != nil {
			gt.guard = guard
		}
	}
}

// WithNotifier sets where activation mails are sent. Without one no mail
// is sent.
func WithNotifier(n Notifier) Option {
	return func(gt *Gate) { gt.notifier = n }
}

// WithMailSettings sets the site name, login URL and admin address used
// when assembling mails.
func WithMailSettings(s MailSettings) Option {
	return func(gt *Gate) { gt.mail = s }
}

// WithNotificationHooks installs overrides for the activation mail.
func WithNotificationHooks(h NotificationHooks) Option {
	return func(gt *Gate) { gt.hooks = h }
}

// WithBatchSize sets how many accounts bulk operations handle per step.
func WithBatchSize(n int) Option {
	return func(gt *Gate) {
		if n > 0 {
			gt.batchSize = n
		}
	}
}

// WithNotifyTimeout bounds how long OnRegister waits for each mail send.
func WithNotifyTimeout(d time.Duration) Option {
	return func(gt *Gate) {
		if d > 0 {
			gt.notifyTimeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(gt *Gate) {
		if l != nil {
			gt.logger = l
		}
	}
}

const (
	defaultBatchSize     = 500
	defaultNotifyTimeout = 10 * time.Second
)

// New returns a Gate over dir.
func New(dir Directory, opts ...Option) *Gate {
	g := &Gate{
		dir:           dir,
		store:         store{dir: dir},
		gen:           RandomGenerator{},
		guard:         allowAllGuard{},
		batchSize:     defaultBatchSize,
		notifyTimeout: defaultNotifyTimeout,
		logger:        logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.logger = g.logger.With("module", "activation_gate")
	return g
}

// Authenticate checks the activation code of a login attempt. previous is
// the upstream result and is returned unchanged for accounts that are
// already activated. The error is reserved for directory failures; expected
// denials are reported in Result.Err.
func (g *Gate) Authenticate(ctx context.Context, attempt LoginAttempt, previous Result) (Result, error) {
	if attempt.Login == "" || attempt.Password == "" {
		missing := &MissingCredentialsError{}
		if attempt.Login == "" {
			missing.Fields = append(missing.Fields, FieldLogin)
		}
		if attempt.Password == "" {
			missing.Fields = append(missing.Fields, FieldPassword)
		}
		return deny(PhaseAwaitingCredentials, "", missing), nil
	}

	account, err := g.dir.FindByLogin(ctx, attempt.Login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return deny(PhaseCredentialsValidated, "", ErrUnknownUser), nil
		}
		return Result{}, fmt.Errorf("error looking up account: %w", err)
	}

	state, err := g.store.load(ctx, account.ID)
	if err != nil {
		return Result{}, err
	}

	code, pending := state.Code()
	if !pending {
		return previous, nil
	}

	if !codesMatch(attempt.Code, code) {
		g.logger.Info(ctx, "activation code mismatch", "account_id", account.ID)
		r := deny(PhaseTokenChecked, account.ID, ErrActivationCodeMismatch)
		r.SkipPasswordCheck = true
		return r, nil
	}

	return Result{
		Verdict:        VerdictAllow,
		Phase:          PhaseTokenChecked,
		AccountID:      account.ID,
		CommitRequired: true,
	}, nil
}

// codesMatch is an exact, constant-time comparison. An empty submission
// never matches.
func codesMatch(submitted, stored string) bool {
	if submitted == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
}

// CommitLogin marks the account's code as consumed. Call it only after the
// login has been fully accepted. It is idempotent.
func (g *Gate) CommitLogin(ctx context.Context, login string) error {
	account, err := g.dir.FindByLogin(ctx, login)
	if err != nil {
		return lookupError(err)
	}

	if err := g.store.save(ctx, account.ID, Consumed()); err != nil {
		return err
	}

	g.logger.Debug(ctx, "activation committed", "account_id", account.ID)
	return nil
}

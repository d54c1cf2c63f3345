package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	"github.com/dmitrijs2005/activationgate/internal/server/auth"
	"github.com/dmitrijs2005/activationgate/internal/server/config"
	"github.com/dmitrijs2005/activationgate/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	mu   sync.Mutex
	msgs []activation.Message
}

func (o *outbox) Send(_ context.Context, m activation.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, m)
	return nil
}

type fixture struct {
	rm   *repomanager.InMemoryRepositoryManager
	gate *activation.Gate
	svc  *UserService
	mail *outbox
}

func newFixture(t *testing.T, code string) *fixture {
	t.Helper()
	rm := repomanager.NewInMemoryRepositoryManager()
	mail := &outbox{}
	gate := activation.New(NewActivationDirectory(rm),
		activation.WithGenerator(activation.GeneratorFunc(func() string { return code })),
		activation.WithNotifier(mail),
		activation.WithMailSettings(activation.MailSettings{SiteName: "Blog", LoginURL: "https://blog.example/login"}),
	)
	cfg := &config.Config{SecretKey: "k", AccessTokenValidityDuration: time.Hour}
	return &fixture{rm: rm, gate: gate, svc: NewUserService(rm, gate, cfg, nil), mail: mail}
}

func (f *fixture) register(t *testing.T, name string) string {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterRequest{UserName: name, Email: name + "@example.com", Password: "pw-" + name})
	require.NoError(t, err)
	return u.ID
}

func TestRegister_IssuesCode(t *testing.T) {
	f := newFixture(t, "k7m2pq9xzz")
	id := f.register(t, "bob")

	v, ok, err := f.rm.UserMeta().Get(context.Background(), id, activation.AttributeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "k7m2pq9xzz", v)

	require.Len(t, f.mail.msgs, 1)
	assert.Equal(t, "bob@example.com", f.mail.msgs[0].To)
	assert.Contains(t, f.mail.msgs[0].Body, "https://blog.example/login?activation_code=k7m2pq9xzz")
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t, "k7m2pq9xzz")

	_, err := f.svc.Register(context.Background(), RegisterRequest{UserName: "", Email: "x", Password: ""})
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.ErrorContains(t, err, "username is empty")
	assert.ErrorContains(t, err, "email is invalid")

	f.register(t, "bob")
	_, err = f.svc.Register(context.Background(), RegisterRequest{UserName: "bob", Email: "b@example.com", Password: "x"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestLogin_FirstLoginNeedsCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "k7m2pq9xzz")
	id := f.register(t, "bob")

	_, err := f.svc.Login(ctx, LoginRequest{UserName: "bob", Password: "pw-bob"})
	assert.ErrorIs(t, err, activation.ErrActivationCodeMismatch)

	// a wrong code hides whether the password was right
	_, err = f.svc.Login(ctx, LoginRequest{UserName: "bob", Password: "wrong", ActivationCode: "nope"})
	assert.ErrorIs(t, err, activation.ErrActivationCodeMismatch)

	// right code, wrong password: the code stays pending
	_, err = f.svc.Login(ctx, LoginRequest{UserName: "bob", Password: "wrong", ActivationCode: "k7m2pq9xzz"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)
	v, _, _ := f.rm.UserMeta().Get(ctx, id, activation.AttributeKey)
	assert.Equal(t, "k7m2pq9xzz", v)

	sess, err := f.svc.Login(ctx, LoginRequest{UserName: "bob", Password: "pw-bob", ActivationCode: "k7m2pq9xzz"})
	require.NoError(t, err)
	assert.True(t, sess.Activated)
	assert.Equal(t, id, sess.UserID)

	claims, err := auth.ParseToken(sess.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)

	v, _, _ = f.rm.UserMeta().Get(ctx, id, activation.AttributeKey)
	assert.Equal(t, activation.ConsumedValue, v)

	sess, err = f.svc.Login(ctx, LoginRequest{UserName: "bob", Password: "pw-bob"})
	require.NoError(t, err)
	assert.False(t, sess.Activated)
}

func TestLogin_Denials(t *testing.T) {
	f := newFixture(t, "k7m2pq9xzz")

	_, err := f.svc.Login(context.Background(), LoginRequest{UserName: "", Password: ""})
	assert.ErrorIs(t, err, activation.ErrMissingCredentials)

	_, err = f.svc.Login(context.Background(), LoginRequest{UserName: "ghost", Password: "pw"})
	assert.ErrorIs(t, err, activation.ErrUnknownUser)
}

func TestLogin_BackfilledAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "k7m2pq9xzz")
	id := f.register(t, "alice")
	_, err := f.rm.UserMeta().Delete(ctx, id, activation.AttributeKey)
	require.NoError(t, err)

	report, err := f.gate.InstallBackfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	_, err = f.svc.Login(ctx, LoginRequest{UserName: "alice", Password: "pw-alice"})
	assert.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{UserName: "alice", Password: "bad"})
	assert.True(t, errors.Is(err, ErrIncorrectPassword))
}

func TestUserIDByName(t *testing.T) {
	f := newFixture(t, "k7m2pq9xzz")
	id := f.register(t, "carol")

	got, err := f.svc.UserIDByName(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = f.svc.UserIDByName(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestEnsureAdmin_CreatesActivatedAdminOnce(t *testing.T) {
	f := newFixture(t, "k7m2pq9xzz")
	ctx := context.Background()
	req := RegisterRequest{UserName: "root", Email: "root@localhost", Password: "hunter2"}

	created, err := f.svc.EnsureAdmin(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, f.mail.msgs)

	sess, err := f.svc.Login(ctx, LoginRequest{UserName: "root", Password: "hunter2"})
	require.NoError(t, err)
	assert.True(t, sess.Admin)
	assert.False(t, sess.Activated)

	created, err = f.svc.EnsureAdmin(ctx, RegisterRequest{UserName: "root", Email: "root@localhost", Password: "other"})
	require.NoError(t, err)
	assert.False(t, created)

	_, err = f.svc.Login(ctx, LoginRequest{UserName: "root", Password: "hunter2"})
	require.NoError(t, err)
}

func TestEnsureAdmin_Validates(t *testing.T) {
	f := newFixture(t, "k7m2pq9xzz")

	_, err := f.svc.EnsureAdmin(context.Background(), RegisterRequest{UserName: "root", Email: "nope", Password: "x"})
	require.ErrorIs(t, err, common.ErrorValidation)
}

package activation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetToken_RequiresAdmin(t *testing.T) {
	dir := newFakeDirectory(alice)
	dir.attrs[alice.ID+"/"+AttributeKey] = "k7#m2pq9xz"
	gate := New(dir)

	err := gate.SetToken(context.Background(), alice.ID, "active", Actor{ID: alice.ID})
	assert.ErrorIs(t, err, ErrUnauthorized)

	v, _ := dir.attr(alice.ID)
	assert.Equal(t, "k7#m2pq9xz", v)
	assert.Zero(t, dir.sets)

	_, err = gate.GetToken(context.Background(), alice.ID, Actor{ID: alice.ID})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSetToken_ForceActivate(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory(alice, root)
	dir.attrs[alice.ID+"/"+AttributeKey] = "k7#m2pq9xz"
	gate := New(dir)
	admin := Actor{ID: root.ID, Admin: true}

	require.NoError(t, gate.SetToken(ctx, alice.ID, "active", admin))

	st, err := gate.GetToken(ctx, alice.ID, admin)
	require.NoError(t, err)
	assert.True(t, st.IsConsumed())

	res, err := gate.Authenticate(ctx, LoginAttempt{Login: "alice", Password: "pw"}, Undecided())
	require.NoError(t, err)
	assert.Equal(t, VerdictDefer, res.Verdict)
}

func TestSetToken_NewCode(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory(alice, root)
	gate := New(dir)
	admin := Actor{ID: root.ID, Admin: true}

	require.NoError(t, gate.SetToken(ctx, alice.ID, "reissued22", admin))

	st, err := gate.GetToken(ctx, alice.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, Pending("reissued22"), st)
}

func TestSetToken_UnknownAccount(t *testing.T) {
	gate := New(newFakeDirectory(root))
	admin := Actor{ID: root.ID, Admin: true}

	assert.ErrorIs(t, gate.SetToken(context.Background(), "nobody", "active", admin), ErrUnknownUser)
	_, err := gate.GetToken(context.Background(), "nobody", admin)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestListAccounts(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory(alice, bob, root)
	dir.attrs[bob.ID+"/"+AttributeKey] = "b0bc0dexyz"
	dir.attrs[root.ID+"/"+AttributeKey] = "active"
	gate := New(dir)
	admin := Actor{ID: root.ID, Admin: true}

	_, err := gate.ListAccounts(ctx, Actor{ID: alice.ID}, ListQuery{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	rows, err := gate.ListAccounts(ctx, admin, ListQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"alice", "bob", "root"}, logins(rows))

	rows, err = gate.ListAccounts(ctx, admin, ListQuery{SortBy: SortByState})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "alice", "root"}, logins(rows))
	assert.True(t, rows[0].State.IsPending())

	rows, err = gate.ListAccounts(ctx, admin, ListQuery{SortBy: SortByLogin, Desc: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "bob"}, logins(rows))

	_, err = gate.ListAccounts(ctx, admin, ListQuery{SortBy: "email"})
	assert.Error(t, err)
}

func logins(rows []AccountState) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Account.Login)
	}
	return out
}

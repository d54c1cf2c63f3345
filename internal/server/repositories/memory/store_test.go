package memory

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, names ...string) map[string]string {
	t.Helper()
	ids := map[string]string{}
	for _, n := range names {
		u, err := s.Create(context.Background(), &models.User{UserName: n, Email: n + "@example.com"})
		require.NoError(t, err)
		ids[n] = u.ID
	}
	return ids
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	ids := seed(t, s, "alice", "bob")

	_, err := s.Create(ctx, &models.User{UserName: "alice"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	u, err := s.GetUserByLogin(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, ids["bob"], u.ID)

	u, err = s.GetUserByID(ctx, ids["alice"])
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)

	_, err = s.GetUserByLogin(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = s.GetUserByID(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStore_ListIDsPages(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seed(t, s, "a", "b", "c", "d", "e")

	var all []string
	after := ""
	for {
		page, err := s.ListIDs(ctx, after, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		after = page[len(page)-1]
	}
	assert.Len(t, all, 5)
	assert.IsIncreasing(t, all)
}

func TestStore_Meta(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	added, err := s.Add(ctx, "u", "k", "v1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(ctx, "u", "k", "v2")
	require.NoError(t, err)
	assert.False(t, added)

	v, ok, _ := s.Get(ctx, "u", "k")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	require.NoError(t, s.Set(ctx, "u", "k", "v3"))
	v, _, _ = s.Get(ctx, "u", "k")
	assert.Equal(t, "v3", v)

	deleted, _ := s.Delete(ctx, "u", "k")
	assert.True(t, deleted)
	deleted, _ = s.Delete(ctx, "u", "k")
	assert.False(t, deleted)
	deleted, _ = s.Delete(ctx, "nobody", "k")
	assert.False(t, deleted)
}

func TestStore_ListWithMeta(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	ids := seed(t, s, "carol", "alice", "bob", "dave")
	require.NoError(t, s.Set(ctx, ids["bob"], "k", "pending1"))
	require.NoError(t, s.Set(ctx, ids["dave"], "k", "pending2"))
	require.NoError(t, s.Set(ctx, ids["carol"], "k", "done"))

	names := func(rows []models.UserWithMeta) []string {
		var out []string
		for _, r := range rows {
			out = append(out, r.User.UserName)
		}
		return out
	}

	rows, err := s.ListWithMeta(ctx, models.UserListOptions{MetaKey: "k", DoneValue: "done", SortBy: models.SortByMetaState})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "dave", "alice", "carol"}, names(rows))

	rows, err = s.ListWithMeta(ctx, models.UserListOptions{MetaKey: "k", DoneValue: "done", SortBy: models.SortByMetaState, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol", "bob", "dave"}, names(rows))

	rows, err = s.ListWithMeta(ctx, models.UserListOptions{MetaKey: "k", SortBy: models.SortByUserName, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, names(rows))
	assert.True(t, rows[0].HasValue)

	rows, err = s.ListWithMeta(ctx, models.UserListOptions{MetaKey: "k", Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

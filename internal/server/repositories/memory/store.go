// Package memory keeps users and their meta in process memory. It backs the
// "memory" storage mode used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/server/models"
	"github.com/google/uuid"
)

// Store satisfies both users.Repository and usermeta.Repository.
type Store struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byLogin map[string]string
	meta    map[string]map[string]string
}

func NewStore() *Store {
	return &Store{
		users:   map[string]models.User{},
		byLogin: map[string]string{},
		meta:    map[string]map[string]string{},
	}
}

func (s *Store) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byLogin[user.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	s.byLogin[user.UserName] = user.ID
	return user, nil
}

func (s *Store) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byLogin[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (s *Store) ListIDs(_ context.Context, after string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		if id > after {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit >= 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *Store) ListWithMeta(_ context.Context, opts models.UserListOptions) ([]models.UserWithMeta, error) {
	s.mu.RLock()
	out := make([]models.UserWithMeta, 0, len(s.users))
	for id, u := range s.users {
		v, ok := s.meta[id][opts.MetaKey]
		out = append(out, models.UserWithMeta{User: u, Value: v, HasValue: ok})
	}
	s.mu.RUnlock()

	done := func(r models.UserWithMeta) bool {
		return !r.HasValue || r.Value == "" || r.Value == opts.DoneValue
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if opts.SortBy == models.SortByMetaState {
			if da, db := done(a), done(b); da != db {
				return db != opts.Desc
			}
			return a.User.UserName < b.User.UserName
		}
		if opts.Desc {
			return a.User.UserName > b.User.UserName
		}
		return a.User.UserName < b.User.UserName
	})

	if opts.Offset >= len(out) {
		return nil, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, userID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.meta[userID][key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metaFor(userID)[key] = value
	return nil
}

func (s *Store) Add(_ context.Context, userID, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.metaFor(userID)
	if _, ok := m[key]; ok {
		return false, nil
	}
	m[key] = value
	return true, nil
}

func (s *Store) Delete(_ context.Context, userID, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meta[userID]
	if !ok {
		return false, nil
	}
	if _, ok := m[key]; !ok {
		return false, nil
	}
	delete(m, key)
	return true, nil
}

// metaFor must be called with the write lock held.
func (s *Store) metaFor(userID string) map[string]string {
	m, ok := s.meta[userID]
	if !ok {
		m = map[string]string{}
		s.meta[userID] = m
	}
	return m
}

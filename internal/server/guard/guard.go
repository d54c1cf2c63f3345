// Package guard deduplicates registration events so that a replayed event
// does not issue a second activation code or send a second mail.
package guard

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL replaces a non-positive TTL; claims always expire.
const DefaultTTL = 24 * time.Hour

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

// Memory remembers claimed accounts in process memory for ttl. It is used
// when no Redis is configured.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	claimed map[string]time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: normalizeTTL(ttl), now: time.Now, claimed: map[string]time.Time{}}
}

func (m *Memory) Claim(_ context.Context, accountID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if exp, ok := m.claimed[accountID]; ok && now.Before(exp) {
		return false, nil
	}

	m.claimed[accountID] = now.Add(m.ttl)
	m.sweep(now)
	return true, nil
}

// sweep drops expired claims; called with the lock held.
func (m *Memory) sweep(now time.Time) {
	for id, exp := range m.claimed {
		if !now.Before(exp) {
			delete(m.claimed, id)
		}
	}
}

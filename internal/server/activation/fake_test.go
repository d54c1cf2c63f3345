package activation

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dmitrijs2005/activationgate/internal/common"
)

// fakeDirectory is a map-backed Directory that records writes.
type fakeDirectory struct {
	mu       sync.Mutex
	accounts map[string]Account
	attrs    map[string]string

	failGet  error
	failList error
	batches  int
	sets     int
}

func newFakeDirectory(accounts ...Account) *fakeDirectory {
	d := &fakeDirectory{accounts: map[string]Account{}, attrs: map[string]string{}}
	for _, a := range accounts {
		d.accounts[a.ID] = a
	}
	return d
}

func (d *fakeDirectory) FindByLogin(_ context.Context, login string) (*Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.accounts {
		if a.Login == login {
			acc := a
			return &acc, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (d *fakeDirectory) FindByID(_ context.Context, id string) (*Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (d *fakeDirectory) GetAttribute(_ context.Context, id, key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failGet != nil {
		return "", false, d.failGet
	}
	v, ok := d.attrs[id+"/"+key]
	return v, ok, nil
}

func (d *fakeDirectory) SetAttribute(_ context.Context, id, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sets++
	d.attrs[id+"/"+key] = value
	return nil
}

func (d *fakeDirectory) AddAttribute(_ context.Context, id, key, value string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.attrs[id+"/"+key]; ok {
		return false, nil
	}
	d.attrs[id+"/"+key] = value
	return true, nil
}

func (d *fakeDirectory) DeleteAttribute(_ context.Context, id, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.attrs[id+"/"+key]; !ok {
		return false, nil
	}
	delete(d.attrs, id+"/"+key)
	return true, nil
}

func (d *fakeDirectory) ListIDs(_ context.Context, after string, limit int) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failList != nil {
		return nil, d.failList
	}
	ids := make([]string, 0, len(d.accounts))
	for id := range d.accounts {
		if id > after {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (d *fakeDirectory) ListAccounts(_ context.Context, key string, q ListQuery) ([]AttributeRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rows := make([]AttributeRow, 0, len(d.accounts))
	for _, a := range d.accounts {
		v, ok := d.attrs[a.ID+"/"+key]
		rows = append(rows, AttributeRow{Account: a, Value: v, Recorded: ok})
	}
	sort.Slice(rows, func(i, j int) bool {
		if q.SortBy == SortByState {
			pi := decodeState(rows[i].Value, rows[i].Recorded).IsPending()
			pj := decodeState(rows[j].Value, rows[j].Recorded).IsPending()
			if pi != pj {
				return pi != q.Desc
			}
		}
		if q.Desc && q.SortBy == SortByLogin {
			return rows[i].Account.Login > rows[j].Account.Login
		}
		return rows[i].Account.Login < rows[j].Account.Login
	})
	if q.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[q.Offset:]
	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (d *fakeDirectory) InBatch(ctx context.Context, fn func(ctx context.Context, dir Directory) error) error {
	d.mu.Lock()
	d.batches++
	d.mu.Unlock()
	return fn(ctx, d)
}

func (d *fakeDirectory) attr(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.attrs[id+"/"+AttributeKey]
	return v, ok
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type stubGuard struct {
	seen map[string]bool
	err  error
}

func (g *stubGuard) Claim(_ context.Context, id string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[id] {
		return false, nil
	}
	g.seen[id] = true
	return true, nil
}

var errBoom = errors.New("boom")

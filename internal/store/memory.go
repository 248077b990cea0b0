// internal/store/memory.go
//
// In-memory session store.
// Sessions are ephemeral by nature (a run lasts minutes), so nothing is persisted.
//
// Characteristics:
//   - Stores *play.Table objects keyed by session ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Idle tables can be swept after a TTL; state is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/duoshao/internal/play"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("store: session not found")

// Store defines the lookup interface for live sessions.
type Store interface {
	// Save adds or replaces a table.
	Save(ctx context.Context, t *play.Table) error

	// Get retrieves a table by session ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*play.Table, error)

	// Delete drops a table; unknown IDs are ignored.
	Delete(ctx context.Context, id string) error
}

// Memory is an in-memory map-based Store implementation.
type Memory struct {
	mu     sync.RWMutex           // guards tables map
	tables map[string]*play.Table // keyed by session ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() *Memory {
	return &Memory{tables: make(map[string]*play.Table)}
}

// Save adds or updates the table in the map.
func (m *Memory) Save(_ context.Context, t *play.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.ID()] = t
	return nil
}

// Get looks up a table by ID.
func (m *Memory) Get(_ context.Context, id string) (*play.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tables[id]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

// Delete removes a table and stops its speech.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	t, ok := m.tables[id]
	delete(m.tables, id)
	m.mu.Unlock()
	if ok {
		t.Close()
	}
	return nil
}

// Len returns the number of live tables.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// Sweep drops tables idle since before now-ttl and returns how many were removed.
func (m *Memory) Sweep(now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)
	m.mu.Lock()
	var stale []*play.Table
	for id, t := range m.tables {
		if t.LastSeen().Before(cutoff) {
			stale = append(stale, t)
			delete(m.tables, id)
		}
	}
	m.mu.Unlock()
	for _, t := range stale {
		t.Close()
	}
	return len(stale)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, interval, ttl time.Duration, onSweep func(n int)) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			if n := m.Sweep(now, ttl); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

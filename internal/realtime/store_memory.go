package realtime

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
)

// MemoryStore is an in-process ConnectionStore for development mode and
// tests. It is refused in production by config validation: records held in
// memory do not survive a restart, which breaks the invariant that the
// store outlives any single invocation.
type MemoryStore struct {
	mu    sync.RWMutex
	recs  map[string]ConnectionRecord
	clock clockwork.Clock
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		recs:  make(map[string]ConnectionRecord),
		clock: clock,
	}
}

// Put upserts a record; the latest write wins.
func (s *MemoryStore) Put(_ context.Context, rec ConnectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ConnectionID] = rec
	return nil
}

// Delete removes a record; unknown ids are a no-op.
func (s *MemoryStore) Delete(_ context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, connectionID)
	return nil
}

// ListAll returns a snapshot of all unexpired records.
func (s *MemoryStore) ListAll(_ context.Context) ([]ConnectionRecord, error) {
	return s.list(func(ConnectionRecord) bool { return true }), nil
}

// ListByScope returns a snapshot of the unexpired records whose scope
// matches exactly.
func (s *MemoryStore) ListByScope(_ context.Context, scope Scope) ([]ConnectionRecord, error) {
	return s.list(func(r ConnectionRecord) bool { return r.Scope == scope }), nil
}

func (s *MemoryStore) list(match func(ConnectionRecord) bool) []ConnectionRecord {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ConnectionRecord, 0, len(s.recs))
	for _, rec := range s.recs {
		if rec.Expired(now) {
			continue
		}
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

package store

import (
	"sync"
	"time"

	"github.com/labbridge/labbridge/internal/registry"
)

// Store is a thread-safe holder for the latest registry snapshot together
// with the time it was received. The poll loop is the only writer; the
// diagnostics API and WebSocket hub read concurrently.
type Store struct {
	mu        sync.RWMutex
	status    *registry.Status
	updatedAt time.Time
	now       func() time.Time // injectable for deterministic tests
}

// New creates an empty Store.
func New() *Store {
	return &Store{now: time.Now}
}

// Put replaces the held snapshot. Callers must not modify st after Put.
func (s *Store) Put(st *registry.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.updatedAt = s.now()
}

// Latest returns the held snapshot, its receive time, and whether any
// snapshot has been stored yet.
func (s *Store) Latest() (*registry.Status, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status == nil {
		return nil, time.Time{}, false
	}
	return s.status, s.updatedAt, true
}

// Age returns how long ago the snapshot was stored. Returns false when no
// snapshot has been stored yet.
func (s *Store) Age() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status == nil {
		return 0, false
	}
	return s.now().Sub(s.updatedAt), true
}

// Stale reports whether the held snapshot is older than maxAge.
// An empty store is always stale.
func (s *Store) Stale(maxAge time.Duration) bool {
	age, ok := s.Age()
	if !ok {
		return true
	}
	return age > maxAge
}

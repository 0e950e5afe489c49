package recipients

import (
	"sort"
	"sync"
)

// Set is a thread-safe, append-only set of chat identifiers.
// The command path inserts concurrently with the poll loop's reads.
type Set struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

// New creates an empty Set.
func New() *Set {
	return &Set{ids: make(map[int64]struct{})}
}

// Add records a chat identifier. It returns true the first time id is seen.
func (s *Set) Add(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// IDs returns a sorted copy of all known chat identifiers.
func (s *Set) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of known chats.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

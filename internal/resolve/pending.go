// Package resolve implements the two-phase "resolve now, enrich later"
// flow behind the inline bot: a minimal placeholder is sent on
// selection, then replaced in place once the chosen-result feedback
// arrives and the detailed fetch completes.
package resolve

import "sync"

// PendingStore associates opaque inline-result identifiers with the
// minimal Item (wrapped in T) used to render their placeholder. Entries
// are consumed exactly once; entries whose feedback never arrives simply
// stay until process exit. Safe for concurrent Put and Take from
// independent interactions.
type PendingStore[T any] struct {
	mu sync.Mutex
	m  map[string]T
}

// NewPendingStore creates an empty store.
func NewPendingStore[T any]() *PendingStore[T] {
	return &PendingStore[T]{m: make(map[string]T)}
}

// Put registers a pending resolution under the given identifier.
func (s *PendingStore[T]) Put(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = v
}

// Take removes and returns the entry for id. The second return is false
// when the identifier was never registered or was already consumed,
// e.g. duplicate feedback delivery or feedback after a restart.
func (s *PendingStore[T]) Take(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[id]
	if ok {
		delete(s.m, id)
	}
	return v, ok
}

// Len reports the number of unconsumed entries.
func (s *PendingStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

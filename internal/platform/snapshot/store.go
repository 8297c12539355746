package snapshot

import "sync/atomic"

// Store holds an immutable snapshot behind an atomic pointer. Readers always
// see a complete, consistent value; writers publish a fully built replacement
// in one step. Snapshots must never be mutated after Swap.
type Store[T any] struct {
	current atomic.Pointer[T]
}

// Load returns the current snapshot, or the zero value and false before the
// first Swap.
func (s *Store[T]) Load() (T, bool) {
	p := s.current.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Swap publishes a new snapshot.
func (s *Store[T]) Swap(next T) {
	s.current.Store(&next)
}

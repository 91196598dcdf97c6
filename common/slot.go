package common

import "sync"

// Slot is a write-once cell used to hand a value from a callback running on
// another goroutine to the update loop. Readers never block: TryGet fails
// while the writer holds the lock or before a value has been stored.
type Slot[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
}

func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{}
}

// Fill stores v if the slot is still empty and reports whether it did.
func (s *Slot[T]) Fill(v T) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return false
	}
	s.value = v
	s.set = true
	return true
}

// TryGet returns the stored value without blocking.
func (s *Slot[T]) TryGet() (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	if !s.mu.TryLock() {
		return zero, false
	}
	defer s.mu.Unlock()
	if !s.set {
		return zero, false
	}
	return s.value, true
}

package ecs

// State holds a value that changes only at frame boundaries: Set queues the
// next value and Apply, run by the world between PreUpdate and Update, commits
// it. The last queued value wins.
type State[T comparable] struct {
	current T
	next    T
	queued  bool
	changed bool
}

func NewState[T comparable](initial T) *State[T] {
	return &State[T]{current: initial}
}

func (s *State[T]) Get() T {
	return s.current
}

func (s *State[T]) Set(next T) {
	s.next = next
	s.queued = true
}

// Queued returns the value waiting to be applied, if any.
func (s *State[T]) Queued() (T, bool) {
	return s.next, s.queued
}

// Apply commits a queued value and reports whether the current value changed.
func (s *State[T]) Apply() bool {
	s.changed = false
	if !s.queued {
		return false
	}
	s.queued = false
	if s.next == s.current {
		return false
	}
	s.current = s.next
	s.changed = true
	return true
}

// JustChanged reports whether the last Apply changed the value.
func (s *State[T]) JustChanged() bool {
	return s.changed
}

// AddState makes the world apply s once per frame.
func AddState[T comparable](w *World, s *State[T]) {
	if w == nil || s == nil {
		return
	}
	w.OnStateTransition(func() { s.Apply() })
}

// InState is satisfied while s holds v.
func InState[T comparable](s *State[T], v T) RunCondition {
	return func(*World) bool {
		return s.Get() == v
	}
}

// StateChanged is satisfied on the frame s changed.
func StateChanged[T comparable](s *State[T]) RunCondition {
	return func(*World) bool {
		return s.JustChanged()
	}
}

package ecs

// Events is a double-buffered queue: an event stays readable for the frame it
// was sent in and the following one, then it is dropped unread.
type Events[E any] struct {
	prev []E
	cur  []E
}

func NewEvents[E any]() *Events[E] {
	return &Events[E]{}
}

// Send queues an event.
func (q *Events[E]) Send(evt E) {
	if q == nil {
		return
	}
	q.cur = append(q.cur, evt)
}

// Drain returns all pending events, oldest first, and clears the queue.
func (q *Events[E]) Drain() []E {
	if q == nil || len(q.prev)+len(q.cur) == 0 {
		return nil
	}
	out := make([]E, 0, len(q.prev)+len(q.cur))
	out = append(out, q.prev...)
	out = append(out, q.cur...)
	q.prev = nil
	q.cur = nil
	return out
}

// Len returns the number of pending events.
func (q *Events[E]) Len() int {
	if q == nil {
		return 0
	}
	return len(q.prev) + len(q.cur)
}

// Swap ages the buffers. The world calls it at the end of every frame for
// queues registered with AddEvents.
func (q *Events[E]) Swap() {
	if q == nil {
		return
	}
	q.prev = q.cur
	q.cur = nil
}

// AddEvents ties a queue's lifetime to the world's frames.
func AddEvents[E any](w *World, q *Events[E]) {
	if w == nil || q == nil {
		return
	}
	w.OnFrameEnd(q.Swap)
}

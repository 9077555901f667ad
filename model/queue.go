package model

// Queue is a bounded FIFO. It is not safe for concurrent use; owners guard it
// with their own lock.
type Queue[T any] struct {
	items []T
	max   int
}

// NewQueue creates a queue holding at most max items; max <= 0 means unbounded.
func NewQueue[T any](max int) *Queue[T] {
	return &Queue[T]{max: max}
}

// Push appends the item; it returns false when the queue is full.
func (q *Queue[T]) Push(item T) bool {
	if q.max > 0 && len(q.items) >= q.max {
		return false
	}
	q.items = append(q.items, item)
	return true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int { return len(q.items) }

// Max returns the configured bound.
func (q *Queue[T]) Max() int { return q.max }

// At returns the item at position i.
func (q *Queue[T]) At(i int) T { return q.items[i] }

// RemoveAt removes the item at position i keeping order.
func (q *Queue[T]) RemoveAt(i int) T {
	item := q.items[i]
	copy(q.items[i:], q.items[i+1:])
	var zero T
	q.items[len(q.items)-1] = zero
	q.items = q.items[:len(q.items)-1]
	return item
}

// Index returns the position of the first item matching fn, or -1.
func (q *Queue[T]) Index(fn func(T) bool) int {
	for i, item := range q.items {
		if fn(item) {
			return i
		}
	}
	return -1
}

// Items returns a copy of the queued items in order.
func (q *Queue[T]) Items() []T {
	return append([]T(nil), q.items...)
}

// Clear removes and returns all items.
func (q *Queue[T]) Clear() []T {
	items := q.items
	q.items = nil
	return items
}

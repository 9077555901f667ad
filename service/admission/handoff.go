package admission

import "sync"

// Assignment is the allocator's answer to a seating request.
type Assignment struct {
	Table    int
	Rejected bool
}

// Handoff carries a single assignment from the allocator to a waiting group.
// Once the group closes it, deliveries fail so the allocator can undo a
// seating nobody will take.
type Handoff struct {
	mu        sync.Mutex
	closed    bool
	delivered bool
	reply     chan Assignment
}

// NewHandoff creates an open handoff.
func NewHandoff() *Handoff {
	return &Handoff{reply: make(chan Assignment, 1)}
}

// Deliver passes the assignment; it returns false if the handoff was closed
// or already used.
func (h *Handoff) Deliver(assignment Assignment) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.delivered {
		return false
	}
	h.delivered = true
	h.reply <- assignment
	return true
}

// Reply returns the channel receiving the assignment.
func (h *Handoff) Reply() <-chan Assignment { return h.reply }

// Close stops further deliveries. When an assignment was delivered but not
// yet received it is returned with ok set.
func (h *Handoff) Close() (assignment Assignment, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	select {
	case assignment = <-h.reply:
		return assignment, true
	default:
		return assignment, false
	}
}

// Closed reports whether the waiting side gave up.
func (h *Handoff) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

package admission

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Class is a waiting queue class.
type Class int

const (
	Normal Class = iota
	VIP
)

// Classes lists classes in drain priority order.
var Classes = []Class{VIP, Normal}

// ClassOf maps the VIP flag to a class.
func ClassOf(vip bool) Class {
	if vip {
		return VIP
	}
	return Normal
}

func (c Class) String() string {
	if c == VIP {
		return "vip"
	}
	return "normal"
}

type pool struct {
	size int64
	sem  *semaphore.Weighted
	held atomic.Int64
}

func newPool(size int) *pool {
	return &pool{size: int64(size), sem: semaphore.NewWeighted(int64(size))}
}

func (p *pool) tryAcquire() bool {
	if !p.sem.TryAcquire(1) {
		return false
	}
	p.held.Add(1)
	return true
}

// Ticket is permission to occupy one waiting queue slot.
type Ticket struct {
	class    Class
	pool     *pool
	once     sync.Once
	released atomic.Bool
}

// Class returns the ticket class.
func (t *Ticket) Class() Class { return t.class }

// Release returns the ticket to its pool. Only the first call has effect; it
// reports whether this call released the ticket.
func (t *Ticket) Release() bool {
	if t == nil {
		return false
	}
	ret := false
	t.once.Do(func() {
		t.released.Store(true)
		t.pool.held.Add(-1)
		t.pool.sem.Release(1)
		ret = true
	})
	return ret
}

// Released reports whether the ticket was returned.
func (t *Ticket) Released() bool { return t == nil || t.released.Load() }

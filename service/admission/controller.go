package admission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/logging"
	"github.com/viant/kaiten/model"
)

var (
	// ErrQueueFull is returned when a class has no free ticket.
	ErrQueueFull = errors.New("admission: queue full")
	// ErrTicketReleased is returned when an entry's ticket or handoff is no longer valid.
	ErrTicketReleased = errors.New("admission: ticket released")
)

// Entry is a waiting queue element.
type Entry struct {
	Group      model.GroupID
	Size       int
	VIP        bool
	Ticket     *Ticket
	Handoff    *Handoff
	EnqueuedAt time.Time
}

// Class returns the entry class.
func (e *Entry) Class() Class { return ClassOf(e.VIP) }

func (e *Entry) stale() bool {
	return (e.Ticket != nil && e.Ticket.Released()) || (e.Handoff != nil && e.Handoff.Closed())
}

// Controller is safe for concurrent use. Its mutex is the queue lock, taken
// before the state lock.
type Controller struct {
	mu       sync.Mutex
	queues   [2]*model.Queue[*Entry]
	pools    [2]*pool
	target   int64
	arrivals atomic.Int64
	gate     atomic.Bool
	signals  *control.Signals
	logger   logr.Logger
	onChange func(class Class, length int)
}

// New creates a controller with queues of the given lengths.
func New(maxNormal, maxVIP int, options ...Option) (*Controller, error) {
	if maxNormal <= 0 || maxVIP <= 0 {
		return nil, fmt.Errorf("queue length must be > 0, got normal: %d, vip: %d", maxNormal, maxVIP)
	}
	ret := &Controller{logger: logr.Discard()}
	ret.queues[Normal] = model.NewQueue[*Entry](maxNormal)
	ret.queues[VIP] = model.NewQueue[*Entry](maxVIP)
	ret.pools[Normal] = newPool(maxNormal)
	ret.pools[VIP] = newPool(maxVIP)
	for _, option := range options {
		option(ret)
	}
	ret.gate.Store(ret.target <= 0)
	return ret, nil
}

// RequestEntry waits for a ticket of the class. Waits are bounded by the
// poll interval and abort on terminate, evacuate or context cancellation.
func (c *Controller) RequestEntry(ctx context.Context, vip bool) (*Ticket, error) {
	class := ClassOf(vip)
	p := c.pools[class]
	for {
		if err := c.signals.Err(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		waitCtx, cancel := context.WithTimeout(ctx, c.signals.PollInterval())
		err := p.sem.Acquire(waitCtx, 1)
		cancel()
		if err != nil {
			continue
		}
		p.held.Add(1)
		ticket := &Ticket{class: class, pool: p}
		if err := c.signals.Err(); err != nil {
			ticket.Release()
			return nil, err
		}
		return ticket, nil
	}
}

// TryRequestEntry takes a ticket without waiting.
func (c *Controller) TryRequestEntry(vip bool) (*Ticket, error) {
	class := ClassOf(vip)
	if !c.pools[class].tryAcquire() {
		return nil, ErrQueueFull
	}
	return &Ticket{class: class, pool: c.pools[class]}, nil
}

// RecordArrival counts a created group and opens the barrier once the
// target is reached; opened is set for the arrival that opened it.
func (c *Controller) RecordArrival() (count int64, opened bool) {
	count = c.arrivals.Add(1)
	if c.target > 0 && count >= c.target && !c.gate.Swap(true) {
		c.logger.V(logging.VERBOSE).Info("arrival barrier opened", "arrivals", count)
		opened = true
	}
	return count, opened
}

// Arrivals returns the number of recorded arrivals.
func (c *Controller) Arrivals() int64 { return c.arrivals.Load() }

// GateOpen reports whether seating is allowed.
func (c *Controller) GateOpen() bool { return c.gate.Load() }

// MustQueue reports whether a new arrival of the class has to wait behind others.
func (c *Controller) MustQueue(vip bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mustQueue(ClassOf(vip))
}

func (c *Controller) mustQueue(class Class) bool {
	return !c.GateOpen() || c.queues[class].Len() > 0
}

// Admit seats the entry through seat when it may bypass the queue, otherwise
// appends it to its class queue. seat runs under the queue lock. Once the
// restaurant closes nothing is queued and the terminate cause is returned.
func (c *Controller) Admit(entry *Entry, seat func(*Entry) bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry.stale() {
		return false, ErrTicketReleased
	}
	if c.signals.Terminating() {
		return false, c.signals.Err()
	}
	class := entry.Class()
	if !c.mustQueue(class) && seat(entry) {
		return true, nil
	}
	return false, c.enqueue(entry)
}

// Enqueue appends the entry to its class queue.
func (c *Controller) Enqueue(entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry.stale() {
		return ErrTicketReleased
	}
	return c.enqueue(entry)
}

func (c *Controller) enqueue(entry *Entry) error {
	class := entry.Class()
	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = time.Now()
	}
	if !c.queues[class].Push(entry) {
		return ErrQueueFull
	}
	c.changed(class)
	c.logger.V(logging.DEBUG).Info("group queued", "group", uint64(entry.Group), "class", class.String(), "size", entry.Size)
	return nil
}

// Scan walks the class queue in FIFO order and removes the first entry
// accepted by seat. With headOfLine only the first live entry is tried.
// Entries whose group gave up are dropped on the way.
func (c *Controller) Scan(class Class, headOfLine bool, seat func(*Entry) bool) *Entry {
	if !c.GateOpen() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	queue := c.queues[class]
	for i := 0; i < queue.Len(); {
		entry := queue.At(i)
		if entry.stale() {
			queue.RemoveAt(i)
			entry.Ticket.Release()
			c.changed(class)
			continue
		}
		if seat(entry) {
			queue.RemoveAt(i)
			c.changed(class)
			return entry
		}
		if headOfLine {
			return nil
		}
		i++
	}
	return nil
}

// Withdraw removes the group's entry, if still queued, and returns its ticket.
func (c *Controller) Withdraw(group model.GroupID) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, class := range Classes {
		queue := c.queues[class]
		if i := queue.Index(func(e *Entry) bool { return e.Group == group }); i >= 0 {
			entry := queue.RemoveAt(i)
			entry.Ticket.Release()
			c.changed(class)
			return entry
		}
	}
	return nil
}

// Evict empties both queues, returning every ticket, and hands the removed
// entries back in drain order.
func (c *Controller) Evict() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ret []*Entry
	for _, class := range Classes {
		entries := c.queues[class].Clear()
		for _, entry := range entries {
			entry.Ticket.Release()
		}
		if len(entries) > 0 {
			c.changed(class)
		}
		ret = append(ret, entries...)
	}
	return ret
}

// Len returns the class queue length.
func (c *Controller) Len(class Class) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queues[class].Len()
}

// Waiting returns the queued group ids of the class in FIFO order.
func (c *Controller) Waiting(class Class) []model.GroupID {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ret []model.GroupID
	for _, entry := range c.queues[class].Items() {
		ret = append(ret, entry.Group)
	}
	return ret
}

// Available returns the number of free tickets of the class.
func (c *Controller) Available(class Class) int {
	p := c.pools[class]
	return int(p.size - p.held.Load())
}

// Capacity returns the ticket pool size of the class.
func (c *Controller) Capacity(class Class) int { return int(c.pools[class].size) }

func (c *Controller) changed(class Class) {
	if c.onChange != nil {
		c.onChange(class, c.queues[class].Len())
	}
}

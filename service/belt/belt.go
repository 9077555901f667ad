package belt

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
	"github.com/viant/kaiten/service/ledger"
	"golang.org/x/sync/semaphore"
)

// ErrBeltFull is returned by a non-blocking produce when no slot is free.
var ErrBeltFull = errors.New("belt: full")

// Belt is safe for concurrent use.
type Belt struct {
	mu    sync.Mutex
	slots []model.Dish
	// owed counts item tokens that belong to dishes swept while a consumer
	// held the token; the next miss settles them instead of releasing.
	owed int

	free  *semaphore.Weighted
	items *semaphore.Weighted

	nextID  atomic.Uint64
	misses  atomic.Int64
	ledger  *ledger.Ledger
	signals *control.Signals
	logger  logr.Logger
}

// New creates an empty belt with capacity slots.
func New(capacity int, options ...Option) (*Belt, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("belt capacity must be > 0, got %d", capacity)
	}
	ret := &Belt{
		slots:  make([]model.Dish, capacity),
		free:   semaphore.NewWeighted(int64(capacity)),
		items:  semaphore.NewWeighted(int64(capacity)),
		logger: logr.Discard(),
	}
	// the item semaphore starts drained: every Release publishes one dish
	if !ret.items.TryAcquire(int64(capacity)) {
		return nil, fmt.Errorf("failed to initialise belt item counter")
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// Capacity returns the number of slots.
func (b *Belt) Capacity() int { return len(b.slots) }

// Misses returns how many item tokens were returned after a scan found no match.
func (b *Belt) Misses() int64 { return b.misses.Load() }

// Produce waits for a free slot and places the dish in the first empty slot.
func (b *Belt) Produce(ctx context.Context, dish model.Dish) (int, error) {
	if err := b.acquire(ctx, b.free); err != nil {
		return -1, err
	}
	return b.place(dish)
}

// TryProduce places the dish without waiting; it fails with ErrBeltFull.
func (b *Belt) TryProduce(dish model.Dish) (int, error) {
	if !b.free.TryAcquire(1) {
		return -1, ErrBeltFull
	}
	return b.place(dish)
}

func (b *Belt) place(dish model.Dish) (int, error) {
	b.mu.Lock()
	idx := -1
	for i := range b.slots {
		if b.slots[i].Empty() {
			idx = i
			break
		}
	}
	if idx == -1 {
		b.mu.Unlock()
		b.free.Release(1)
		b.logger.Error(nil, "slot token granted but belt has no empty slot")
		return -1, ErrBeltFull
	}
	dish.ID = b.nextID.Add(1)
	if dish.Price == 0 {
		dish.Price = dish.Color.Price()
	}
	b.slots[idx] = dish
	b.ledger.Produced(dish)
	b.mu.Unlock()

	b.items.Release(1)
	b.logger.V(logging.DEBUG).Info("dish placed", "dish", dish.ID, "slot", idx, "color", dish.Color.String(), "target", uint64(dish.Target))
	return idx, nil
}

// ConsumeMatching waits until the belt holds a dish, then claims the first
// slot, in index order, accepted by match. When no slot matches the item
// token is returned and ok is false.
func (b *Belt) ConsumeMatching(ctx context.Context, match Matcher) (dish model.Dish, ok bool, err error) {
	if err = b.acquire(ctx, b.items); err != nil {
		return dish, false, err
	}
	b.mu.Lock()
	for i := range b.slots {
		candidate := b.slots[i]
		if candidate.Empty() || !match(i, candidate) {
			continue
		}
		b.slots[i] = model.Dish{}
		b.mu.Unlock()
		b.free.Release(1)
		return candidate, true, nil
	}
	if b.owed > 0 {
		b.owed--
	} else {
		b.items.Release(1)
	}
	b.mu.Unlock()
	b.misses.Add(1)
	return dish, false, nil
}

// Sweep removes every dish ordered by the group and records it as wasted.
func (b *Belt) Sweep(group model.GroupID) []model.Dish {
	if group == 0 {
		return nil
	}
	return b.sweep(func(dish model.Dish) bool { return dish.Target == group })
}

// SweepOrphans removes ordered dishes whose group is no longer present.
func (b *Belt) SweepOrphans(present func(model.GroupID) bool) []model.Dish {
	return b.sweep(func(dish model.Dish) bool {
		return !dish.Generic() && !present(dish.Target)
	})
}

func (b *Belt) sweep(match func(model.Dish) bool) []model.Dish {
	var swept []model.Dish
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.slots {
		dish := b.slots[i]
		if dish.Empty() || !match(dish) {
			continue
		}
		b.slots[i] = model.Dish{}
		b.ledger.Wasted(dish)
		if !b.items.TryAcquire(1) {
			b.owed++
		}
		b.free.Release(1)
		swept = append(swept, dish)
	}
	return swept
}

// Rotate shifts every dish one slot forward, wrapping the last slot to the
// first. An empty belt is left untouched.
func (b *Belt) Rotate() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	empty := true
	for _, dish := range b.slots {
		if !dish.Empty() {
			empty = false
			break
		}
	}
	if empty {
		return false
	}
	last := b.slots[len(b.slots)-1]
	copy(b.slots[1:], b.slots[:len(b.slots)-1])
	b.slots[0] = last
	return true
}

// Spin rotates the belt every interval (scaled by speed) until the context
// is done or the simulation is evacuated.
func (b *Belt) Spin(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	for {
		if err := b.signals.Sleep(ctx, interval); err != nil {
			return err
		}
		if b.Rotate() {
			b.logger.V(logging.TRACE).Info("belt rotated")
		}
	}
}

// Len returns the number of dishes on the belt.
func (b *Belt) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, dish := range b.slots {
		if !dish.Empty() {
			count++
		}
	}
	return count
}

// Dishes returns a copy of the slots; empty slots have a zero ID.
func (b *Belt) Dishes() []model.Dish {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Dish(nil), b.slots...)
}

// Remaining counts dishes on the belt per colour.
func (b *Belt) Remaining() [model.ColorCount]int {
	var ret [model.ColorCount]int
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, dish := range b.slots {
		if !dish.Empty() && dish.Color.Valid() {
			ret[dish.Color]++
		}
	}
	return ret
}

// acquire takes one token with waits bounded by the poll interval, giving up
// on context cancellation or evacuation.
func (b *Belt) acquire(ctx context.Context, sem *semaphore.Weighted) error {
	for {
		if b.signals.Evacuating() {
			return control.ErrEvacuated
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		waitCtx, cancel := context.WithTimeout(ctx, b.signals.PollInterval())
		err := sem.Acquire(waitCtx, 1)
		cancel()
		if err == nil {
			if b.signals.Evacuating() {
				sem.Release(1)
				return control.ErrEvacuated
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

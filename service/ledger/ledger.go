// Package ledger keeps the restaurant's money and plate counters: produced,
// sold and wasted plates per colour plus total revenue. All writes go
// through Update with a Delta, so observers (metrics, reports) see a
// consistent snapshot after every change.
package ledger

import (
	"sync"
	"time"

	"github.com/viant/kaiten/model"
)

// Delta represents an incremental counter change emitted by the kitchen,
// the belt or the allocator.
type Delta struct {
	Color    model.Color
	Produced int
	Sold     int
	Wasted   int
	Revenue  int
	Groups   int
}

// NoColor marks a delta that does not touch any colour line.
const NoColor = model.Color(-1)

// Line aggregates counters for a single colour.
type Line struct {
	Produced      int `json:"produced"`
	ProducedValue int `json:"producedValue"`
	Sold          int `json:"sold"`
	SoldValue     int `json:"soldValue"`
	Wasted        int `json:"wasted"`
	WastedValue   int `json:"wastedValue"`
}

// Snapshot is a read-only copy of the ledger.
type Snapshot struct {
	StartedAt time.Time              `json:"startedAt"`
	Lines     [model.ColorCount]Line `json:"lines"`
	Revenue   int                    `json:"revenue"`
	Groups    int                    `json:"groups"`
}

// Totals sums all colour lines.
func (s Snapshot) Totals() Line {
	var ret Line
	for _, line := range s.Lines {
		ret.Produced += line.Produced
		ret.ProducedValue += line.ProducedValue
		ret.Sold += line.Sold
		ret.SoldValue += line.SoldValue
		ret.Wasted += line.Wasted
		ret.WastedValue += line.WastedValue
	}
	return ret
}

// Ledger is safe for concurrent use. Its mutex is a leaf lock: it is never
// held while acquiring another lock.
type Ledger struct {
	mu       sync.Mutex
	snapshot Snapshot
	onChange func(Delta, Snapshot)
}

// New creates an empty ledger.
func New(onChange func(Delta, Snapshot)) *Ledger {
	return &Ledger{snapshot: Snapshot{StartedAt: time.Now()}, onChange: onChange}
}

// Update applies the delta. The onChange callback runs outside the critical
// section with a copy of the updated counters.
func (l *Ledger) Update(d Delta) {
	if l == nil || (!d.Color.Valid() && d.Color != NoColor) {
		return
	}
	l.mu.Lock()
	if d.Color.Valid() {
		price := d.Color.Price()
		line := &l.snapshot.Lines[d.Color]
		line.Produced += d.Produced
		line.ProducedValue += d.Produced * price
		line.Sold += d.Sold
		line.SoldValue += d.Sold * price
		line.Wasted += d.Wasted
		line.WastedValue += d.Wasted * price
	}
	l.snapshot.Revenue += d.Revenue
	l.snapshot.Groups += d.Groups
	snapshot := l.snapshot
	cb := l.onChange
	l.mu.Unlock()

	if cb != nil {
		cb(d, snapshot)
	}
}

// Produced records a cooked dish.
func (l *Ledger) Produced(dish model.Dish) {
	l.Update(Delta{Color: dish.Color, Produced: 1})
}

// Sold records a consumed dish.
func (l *Ledger) Sold(dish model.Dish) {
	l.Update(Delta{Color: dish.Color, Sold: 1})
}

// Wasted records a swept dish.
func (l *Ledger) Wasted(dish model.Dish) {
	l.Update(Delta{Color: dish.Color, Wasted: 1})
}

// Paid records a settled bill.
func (l *Ledger) Paid(amount int) {
	l.Update(Delta{Color: NoColor, Revenue: amount, Groups: 1})
}

// Snapshot returns a copy of the counters.
func (l *Ledger) Snapshot() Snapshot {
	if l == nil {
		return Snapshot{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot
}

// OnChange replaces the change callback. Passing nil disables it.
func (l *Ledger) OnChange(cb func(Delta, Snapshot)) {
	l.mu.Lock()
	l.onChange = cb
	l.mu.Unlock()
}

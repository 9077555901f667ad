// Package state holds the shared restaurant state: tables and guest
// counters under the state lock, next to the belt, the admission
// controller, the ledger and the control signals.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/service/admission"
	"github.com/viant/kaiten/service/belt"
	"github.com/viant/kaiten/service/ledger"
)

// State is safe for concurrent use. The state lock guards tables and guest
// counters only; it is taken after the queue lock and before the belt lock.
type State struct {
	mu       sync.Mutex
	tables   []*model.Table
	seated   map[model.GroupID]int
	guests   int
	vips     int
	onChange func(guests, vips int)

	Belt      *belt.Belt
	Admission *admission.Controller
	Ledger    *ledger.Ledger
	Signals   *control.Signals
}

// Option customises the state.
type Option func(s *State)

// WithGuestObserver is notified of guest count changes under the state lock.
func WithGuestObserver(fn func(guests, vips int)) Option {
	return func(s *State) {
		s.onChange = fn
	}
}

// New creates the shared state.
func New(tables []*model.Table, b *belt.Belt, a *admission.Controller, l *ledger.Ledger, signals *control.Signals, options ...Option) (*State, error) {
	if len(tables) == 0 {
		return nil, errors.New("state: no tables")
	}
	ret := &State{
		tables:    tables,
		seated:    make(map[model.GroupID]int),
		Belt:      b,
		Admission: a,
		Ledger:    l,
		Signals:   signals,
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// TrySeat scans tables in index order and seats the party at the first
// table that accepts it.
func (s *State) TrySeat(vip bool, size int, group model.GroupID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seated[group]; ok {
		return -1, false
	}
	for i, table := range s.tables {
		if !table.Accepts(vip, size) {
			continue
		}
		if !table.Seat(model.Slot{Occupant: group, Size: size, VIP: vip}) {
			continue
		}
		s.seated[group] = i
		s.guests += size
		if vip {
			s.vips += size
		}
		s.changed()
		return i, true
	}
	return -1, false
}

// Vacate frees the group's seats.
func (s *State) Vacate(group model.GroupID) (model.Slot, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.seated[group]
	if !ok {
		return model.Slot{}, -1, false
	}
	delete(s.seated, group)
	slot, ok := s.tables[index].Leave(group)
	if !ok {
		return model.Slot{}, index, false
	}
	s.guests -= slot.Size
	if slot.VIP {
		s.vips -= slot.Size
	}
	s.changed()
	return slot, index, true
}

// TableOf returns the table index of a seated group.
func (s *State) TableOf(group model.GroupID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.seated[group]
	return index, ok
}

// Guests returns the seated guest and VIP guest counts.
func (s *State) Guests() (guests, vips int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guests, s.vips
}

// SeatedGroups returns the number of groups at tables.
func (s *State) SeatedGroups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seated)
}

// TableCount returns the number of tables.
func (s *State) TableCount() int { return len(s.tables) }

// Tables returns a copy of every table.
func (s *State) Tables() []model.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]model.Table, len(s.tables))
	for i, table := range s.tables {
		ret[i] = *table
	}
	return ret
}

// Check verifies table invariants and guest counters.
func (s *State) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	guests := 0
	for _, table := range s.tables {
		if err := table.Check(); err != nil {
			errs = append(errs, err)
		}
		guests += table.Occupied
	}
	if guests != s.guests {
		errs = append(errs, fmt.Errorf("guest counter %d, tables hold %d", s.guests, guests))
	}
	for group, index := range s.seated {
		if index < 0 || index >= len(s.tables) || !s.tables[index].Holds(group) {
			errs = append(errs, fmt.Errorf("group %d recorded at table %d is not seated there", group, index))
		}
	}
	return errors.Join(errs...)
}

func (s *State) changed() {
	if s.onChange != nil {
		s.onChange(s.guests, s.vips)
	}
}

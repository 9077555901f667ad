package model

import "fmt"

// MaxSlots is the number of parties a single table can host.
const MaxSlots = 4

// Slot is a party seated at a table. A zero Occupant marks a free slot.
type Slot struct {
	Occupant GroupID `json:"occupant,omitempty"`
	Size     int     `json:"size,omitempty"`
	VIP      bool    `json:"vip,omitempty"`
}

// Empty reports whether the slot is free.
func (s Slot) Empty() bool { return s.Occupant == 0 }

// Table is a physical table shared by same-sized parties.
type Table struct {
	ID       int            `json:"id"`
	Capacity int            `json:"capacity"`
	Occupied int            `json:"occupied"`
	Slots    [MaxSlots]Slot `json:"slots"`
}

// NewTables creates tables; counts[i] is the number of tables seating i+1 guests.
func NewTables(counts [4]int) []*Table {
	var tables []*Table
	for i, count := range counts {
		for j := 0; j < count; j++ {
			tables = append(tables, &Table{ID: len(tables), Capacity: i + 1})
		}
	}
	return tables
}

// Seats returns the total number of seats.
func Seats(tables []*Table) int {
	total := 0
	for _, t := range tables {
		total += t.Capacity
	}
	return total
}

// Free returns the number of unoccupied seats.
func (t *Table) Free() int { return t.Capacity - t.Occupied }

// Empty reports whether nobody is seated.
func (t *Table) Empty() bool { return t.Occupied == 0 }

// Compatible reports whether a party of size may share the table: every seated
// party must have the same size. An empty table is always compatible.
func (t *Table) Compatible(size int) bool {
	for _, slot := range t.Slots {
		if !slot.Empty() && slot.Size != size {
			return false
		}
	}
	return true
}

// Accepts reports whether the party can be seated right now.
func (t *Table) Accepts(vip bool, size int) bool {
	if vip && t.Capacity == 1 {
		return false
	}
	if t.Free() < size {
		return false
	}
	if !t.Compatible(size) {
		return false
	}
	return t.freeSlot() != -1
}

// Seat places the party in the first free slot.
func (t *Table) Seat(slot Slot) bool {
	idx := t.freeSlot()
	if idx == -1 || slot.Occupant == 0 {
		return false
	}
	t.Slots[idx] = slot
	t.Occupied += slot.Size
	return true
}

// Leave frees the slot held by the group.
func (t *Table) Leave(group GroupID) (Slot, bool) {
	for i, slot := range t.Slots {
		if slot.Occupant != group || slot.Empty() {
			continue
		}
		t.Slots[i] = Slot{}
		t.Occupied -= slot.Size
		return slot, true
	}
	return Slot{}, false
}

// Holds reports whether the group is seated at the table.
func (t *Table) Holds(group GroupID) bool {
	if group == 0 {
		return false
	}
	for _, slot := range t.Slots {
		if slot.Occupant == group {
			return true
		}
	}
	return false
}

// Check verifies the seating invariants of the table.
func (t *Table) Check() error {
	sum, size := 0, 0
	for _, slot := range t.Slots {
		if slot.Empty() {
			continue
		}
		if slot.VIP && t.Capacity == 1 {
			return fmt.Errorf("table %d: vip group %d on single seat", t.ID, slot.Occupant)
		}
		if size != 0 && slot.Size != size {
			return fmt.Errorf("table %d: mixed party sizes %d and %d", t.ID, size, slot.Size)
		}
		size = slot.Size
		sum += slot.Size
	}
	if sum != t.Occupied {
		return fmt.Errorf("table %d: occupied %d, slots hold %d", t.ID, t.Occupied, sum)
	}
	if t.Occupied > t.Capacity {
		return fmt.Errorf("table %d: occupied %d exceeds capacity %d", t.ID, t.Occupied, t.Capacity)
	}
	return nil
}

func (t *Table) freeSlot() int {
	for i, slot := range t.Slots {
		if slot.Empty() {
			return i
		}
	}
	return -1
}

package belt

import "github.com/viant/kaiten/model"

// Matcher decides whether the dish at slot may be claimed.
type Matcher func(slot int, dish model.Dish) bool

// Any matches every dish.
func Any() Matcher {
	return func(int, model.Dish) bool { return true }
}

// ForGroup matches generic dishes and dishes ordered by the group.
func ForGroup(group model.GroupID) Matcher {
	return func(_ int, dish model.Dish) bool { return dish.For(group) }
}

// Within restricts the matcher to slots inside the window.
func (m Matcher) Within(window *Window) Matcher {
	if window == nil {
		return m
	}
	return func(slot int, dish model.Dish) bool {
		return window.Contains(slot) && m(slot, dish)
	}
}

// Window is a circular range of slots reachable from a table.
type Window struct {
	Center   int
	Reach    int
	Capacity int
}

// Near maps a table to the belt slots passing in front of it. A non-positive
// reach returns nil, meaning the whole belt.
func Near(table, tables, capacity, reach int) *Window {
	if reach <= 0 || tables <= 0 || capacity <= 0 || 2*reach+1 >= capacity {
		return nil
	}
	return &Window{Center: table * capacity / tables, Reach: reach, Capacity: capacity}
}

// Contains reports whether the slot lies within the window.
func (w *Window) Contains(slot int) bool {
	if w == nil {
		return true
	}
	distance := (slot - w.Center) % w.Capacity
	if distance < 0 {
		distance += w.Capacity
	}
	if distance > w.Capacity/2 {
		distance = w.Capacity - distance
	}
	return distance <= w.Reach
}

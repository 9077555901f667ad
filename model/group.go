package model

import "sync"

// Group is a party of clients visiting the restaurant. The descriptive fields
// are immutable after creation; the eating counters are shared by the
// group's person actors and guarded by an internal mutex.
type Group struct {
	ID       GroupID `json:"id"`
	Size     int     `json:"size"`
	Adults   int     `json:"adults"`
	Children int     `json:"children"`
	VIP      bool    `json:"vip"`
	Dishes   int     `json:"dishes"`
	Orders   int     `json:"orders"`

	mu         sync.Mutex
	dishesLeft int
	reserved   int
	ordersLeft int
	eaten      [ColorCount]int
	table      int
}

// NewGroup creates a group that wants to eat dishes plates and may place up to orders premium orders.
func NewGroup(id GroupID, size, children int, vip bool, dishes, orders int) *Group {
	if vip {
		children = 0
	}
	if children >= size {
		children = size - 1
	}
	if children < 0 {
		children = 0
	}
	return &Group{
		ID:         id,
		Size:       size,
		Adults:     size - children,
		Children:   children,
		VIP:        vip,
		Dishes:     dishes,
		Orders:     orders,
		dishesLeft: dishes,
		ordersLeft: orders,
		table:      -1,
	}
}

// Reserve claims one plate from the group's appetite. It returns false when
// the group has nothing left to eat.
func (g *Group) Reserve() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dishesLeft <= 0 {
		return false
	}
	g.dishesLeft--
	g.reserved++
	return true
}

// Unreserve returns a claim that was not turned into a meal.
func (g *Group) Unreserve() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reserved == 0 {
		return
	}
	g.reserved--
	g.dishesLeft++
}

// Eat settles a reservation with the consumed plate.
func (g *Group) Eat(color Color) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reserved > 0 {
		g.reserved--
	}
	if color.Valid() {
		g.eaten[color]++
	}
}

// TakeOrder consumes one premium order from the group's budget.
func (g *Group) TakeOrder() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ordersLeft <= 0 {
		return false
	}
	g.ordersLeft--
	return true
}

// DishesLeft returns the plates the group still wants, excluding reservations in flight.
func (g *Group) DishesLeft() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dishesLeft
}

// OrdersLeft returns the remaining premium order budget.
func (g *Group) OrdersLeft() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ordersLeft
}

// Finished reports whether the group has eaten everything it wanted.
func (g *Group) Finished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dishesLeft == 0 && g.reserved == 0
}

// Eaten returns plates eaten per colour.
func (g *Group) Eaten() [ColorCount]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.eaten
}

// Bill returns the value of everything eaten.
func (g *Group) Bill() int {
	eaten := g.Eaten()
	return BillOf(eaten)
}

// BillOf prices a per-colour plate count.
func BillOf(eaten [ColorCount]int) int {
	total := 0
	for i, count := range eaten {
		total += count * Color(i).Price()
	}
	return total
}

// Table returns the table index or -1 when not seated.
func (g *Group) Table() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.table
}

// SetTable records the table index.
func (g *Group) SetTable(index int) {
	g.mu.Lock()
	g.table = index
	g.mu.Unlock()
}

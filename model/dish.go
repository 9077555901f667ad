package model

import "fmt"

// Color identifies the plate colour; every colour has a fixed price.
type Color int

const (
	White Color = iota
	Yellow
	Green
	Red
	Blue
	Purple
)

// ColorCount is the number of plate colours.
const ColorCount = 6

// GenericColors is the number of leading colours the kitchen cooks without an order.
const GenericColors = 3

var (
	colorPrices = [ColorCount]int{10, 15, 20, 40, 50, 60}
	colorNames  = [ColorCount]string{"white", "yellow", "green", "red", "blue", "purple"}
)

// Colors returns all colours in index order.
func Colors() []Color {
	return []Color{White, Yellow, Green, Red, Blue, Purple}
}

// Price returns the plate price.
func (c Color) Price() int {
	if !c.Valid() {
		return 0
	}
	return colorPrices[c]
}

// Premium reports whether the colour is only cooked on order.
func (c Color) Premium() bool { return c >= GenericColors && c.Valid() }

// Valid reports whether c is a known colour.
func (c Color) Valid() bool { return c >= 0 && c < ColorCount }

func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("color(%d)", int(c))
	}
	return colorNames[c]
}

// ParseColor returns the colour for a name.
func ParseColor(name string) (Color, error) {
	for i, candidate := range colorNames {
		if candidate == name {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color: %q", name)
}

// GroupID identifies a client group. Zero means "no group".
type GroupID uint64

// Dish is a single plate. A zero ID marks an empty belt slot.
type Dish struct {
	ID     uint64  `json:"id"`
	Color  Color   `json:"color"`
	Price  int     `json:"price"`
	Target GroupID `json:"target,omitempty"`
}

// NewDish returns an unnumbered dish priced from its colour; the belt assigns the ID.
func NewDish(color Color, target GroupID) Dish {
	return Dish{Color: color, Price: color.Price(), Target: target}
}

// Empty reports whether the value represents a free slot.
func (d Dish) Empty() bool { return d.ID == 0 }

// Generic reports whether any group may claim the dish.
func (d Dish) Generic() bool { return d.Target == 0 }

// For reports whether the dish may be eaten by the supplied group.
func (d Dish) For(group GroupID) bool { return d.Target == 0 || d.Target == group }

package model

// Order is a premium dish requested by a seated group.
type Order struct {
	Group GroupID `json:"group"`
	Color Color   `json:"color"`
}

// PremiumColors returns the colours cooked only on order.
func PremiumColors() []Color {
	return []Color{Red, Blue, Purple}
}

// Package kitchen cooks dishes onto the belt. Premium orders placed by
// seated groups are cooked before generic dishes.
package kitchen

// Package dao defines the generic storage contract used for simulation
// registries, with an in-memory implementation in the store package.
package dao

import (
	"context"
)

// Service stores entities of type T by key K.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}

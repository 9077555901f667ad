package dao

import "errors"

var (
	// ErrNotFound is returned when the requested entity is not stored.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID is returned for a zero or otherwise unusable key.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when a nil pointer is saved.
	ErrNilEntity = errors.New("dao: nil entity")
)

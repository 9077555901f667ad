// Package messaging defines the in-process message queue contract used for
// group-to-allocator requests, premium kitchen orders and the log journal.
package messaging

import (
	"context"
	"errors"
)

// ErrFull is returned by a non-blocking publish when the queue buffer is exhausted.
var ErrFull = errors.New("messaging: queue full")

// Queue represents a bounded message queue for any payload type
type Queue[T any] interface {
	// Publish adds a message, waiting for buffer space
	Publish(ctx context.Context, t *T) error

	// TryPublish adds a message or fails with ErrFull
	TryPublish(t *T) error

	// Consume waits for a single message
	Consume(ctx context.Context) (Message[T], error)

	// TryConsume returns a message if one is ready
	TryConsume() (Message[T], bool)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// ID returns the message identifier
	ID() string

	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error
}

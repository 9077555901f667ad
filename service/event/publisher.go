package event

import (
	"context"
	"time"

	"github.com/viant/kaiten/service/messaging"
)

// Publisher sends typed events to a queue.
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

// NewPublisher creates a publisher.
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish waits for queue space.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = time.Now()
	return p.queue.Publish(ctx, event)
}

// TryPublish drops the event with messaging.ErrFull when the queue is full.
func (p *Publisher[T]) TryPublish(event *Event[T]) error {
	event.CreatedAt = time.Now()
	return p.queue.TryPublish(event)
}

// Consume waits for the next event and acknowledges it.
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}

// Drain hands every already queued event to handler without waiting.
func (p *Publisher[T]) Drain(handler func(*Event[T])) int {
	count := 0
	for {
		msg, ok := p.queue.TryConsume()
		if !ok {
			return count
		}
		if err := msg.Ack(); err == nil {
			handler(msg.T())
			count++
		}
	}
}

package admission

import (
	"github.com/go-logr/logr"
	"github.com/viant/kaiten/control"
)

// Option customises the controller.
type Option func(c *Controller)

// WithBarrier defers seating until target arrivals were recorded.
func WithBarrier(target int) Option {
	return func(c *Controller) {
		c.target = int64(target)
	}
}

// WithSignals makes ticket waits observe the simulation control state.
func WithSignals(signals *control.Signals) Option {
	return func(c *Controller) {
		c.signals = signals
	}
}

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithQueueObserver is notified of every queue length change, under the queue lock.
func WithQueueObserver(fn func(class Class, length int)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

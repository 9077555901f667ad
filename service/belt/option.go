package belt

import (
	"github.com/go-logr/logr"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/service/ledger"
)

// Option customises the belt.
type Option func(b *Belt)

// WithLedger records produced and wasted dishes.
func WithLedger(l *ledger.Ledger) Option {
	return func(b *Belt) {
		b.ledger = l
	}
}

// WithSignals makes waits observe the simulation control state.
func WithSignals(signals *control.Signals) Option {
	return func(b *Belt) {
		b.signals = signals
	}
}

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(b *Belt) {
		b.logger = logger
	}
}

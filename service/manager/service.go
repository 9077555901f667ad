// Package manager is the scripted control source: it changes the global speed
// and raises terminate or evacuate at configured offsets.
package manager

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/logging"
)

// Service runs a schedule against the control signals
type Service struct {
	signals  *control.Signals
	schedule Schedule
	logger   logr.Logger
	applied  atomic.Int32
}

// Option customises the manager.
type Option func(s *Service)

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a manager.
func New(signals *control.Signals, schedule Schedule, options ...Option) (*Service, error) {
	if signals == nil {
		return nil, fmt.Errorf("control signals are required")
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	s := &Service{signals: signals, schedule: schedule.Sorted(), logger: logr.Discard()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Apply performs a single action.
func (s *Service) Apply(action Action) error {
	switch action {
	case ActionSlow:
		s.signals.SetSpeed(control.Slow)
	case ActionNormal:
		s.signals.SetSpeed(control.Normal)
	case ActionFast:
		s.signals.SetSpeed(control.Fast)
	case ActionTerminate:
		s.signals.Terminate()
	case ActionEvacuate:
		s.signals.Evacuate()
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
	s.applied.Add(1)
	s.logger.V(logging.DEFAULT).Info("MANAGER", "action", string(action), "speed", s.signals.Speed().String())
	return nil
}

// Applied returns the number of actions performed.
func (s *Service) Applied() int { return int(s.applied.Load()) }

// Run applies the schedule and returns once it is exhausted, the simulation
// is evacuated or ctx is done.
func (s *Service) Run(ctx context.Context) error {
	started := time.Now()
	for _, step := range s.schedule {
		if wait := step.After - time.Since(started); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-s.signals.Evacuated():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
		if s.signals.Evacuating() {
			return nil
		}
		if err := s.Apply(step.Action); err != nil {
			return err
		}
	}
	return nil
}

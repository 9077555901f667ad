package control

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrTerminated is returned by waits aborted by a graceful terminate.
	ErrTerminated = errors.New("control: terminated")
	// ErrEvacuated is returned by waits aborted by an evacuation.
	ErrEvacuated = errors.New("control: evacuated")
)

// Speed is the global simulation speed level.
type Speed int32

const (
	Slow Speed = iota + 1
	Normal
	Fast
)

// DefaultPollInterval bounds every timed wait so cancellation is observed promptly.
const DefaultPollInterval = 50 * time.Millisecond

func (s Speed) String() string {
	switch s {
	case Slow:
		return "slow"
	case Fast:
		return "fast"
	default:
		return "normal"
	}
}

// ParseSpeed converts a level name.
func ParseSpeed(name string) (Speed, error) {
	switch strings.ToLower(name) {
	case "slow":
		return Slow, nil
	case "", "normal":
		return Normal, nil
	case "fast":
		return Fast, nil
	}
	return Normal, fmt.Errorf("unknown speed: %q", name)
}

// multiplier returns the think-time factor in halves: fast=1, normal=2, slow=4.
func (s Speed) multiplier() int64 {
	switch s {
	case Fast:
		return 1
	case Slow:
		return 4
	default:
		return 2
	}
}

// Scale adjusts a duration expressed at normal speed to this level.
func (s Speed) Scale(d time.Duration) time.Duration {
	return time.Duration(int64(d) * s.multiplier() / 2)
}

// Signals is the shared control state. The zero value is not usable; use New.
type Signals struct {
	speed        atomic.Int32
	terminating  atomic.Bool
	evacuating   atomic.Bool
	terminated   chan struct{}
	evacuated    chan struct{}
	terminateOne sync.Once
	evacuateOne  sync.Once
	pollInterval time.Duration
}

// New creates control state at the given speed.
func New(speed Speed, pollInterval time.Duration) *Signals {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	ret := &Signals{
		terminated:   make(chan struct{}),
		evacuated:    make(chan struct{}),
		pollInterval: pollInterval,
	}
	ret.speed.Store(int32(speed))
	return ret
}

// Speed returns the current speed level.
func (s *Signals) Speed() Speed {
	if s == nil {
		return Normal
	}
	return Speed(s.speed.Load())
}

// SetSpeed changes the speed level.
func (s *Signals) SetSpeed(speed Speed) {
	s.speed.Store(int32(speed))
}

// Scale adjusts d to the current speed.
func (s *Signals) Scale(d time.Duration) time.Duration {
	return s.Speed().Scale(d)
}

// PollInterval returns the bound applied to timed waits.
func (s *Signals) PollInterval() time.Duration {
	if s == nil {
		return DefaultPollInterval
	}
	return s.pollInterval
}

// Terminate requests a graceful stop: no new work is accepted, in-flight work finishes.
func (s *Signals) Terminate() {
	s.terminateOne.Do(func() {
		s.terminating.Store(true)
		close(s.terminated)
	})
}

// Evacuate requests an immediate stop. It implies Terminate.
func (s *Signals) Evacuate() {
	s.evacuateOne.Do(func() {
		s.evacuating.Store(true)
		close(s.evacuated)
	})
	s.Terminate()
}

// Terminating reports whether a graceful stop was requested.
func (s *Signals) Terminating() bool { return s != nil && s.terminating.Load() }

// Evacuating reports whether an evacuation was requested.
func (s *Signals) Evacuating() bool { return s != nil && s.evacuating.Load() }

// Terminated is closed on terminate (and on evacuate). A nil receiver
// returns a channel that never closes.
func (s *Signals) Terminated() <-chan struct{} {
	if s == nil {
		return nil
	}
	return s.terminated
}

// Evacuated is closed on evacuate.
func (s *Signals) Evacuated() <-chan struct{} {
	if s == nil {
		return nil
	}
	return s.evacuated
}

// Err returns the cancellation cause, evacuation first, or nil.
func (s *Signals) Err() error {
	switch {
	case s.Evacuating():
		return ErrEvacuated
	case s.Terminating():
		return ErrTerminated
	}
	return nil
}

// Sleep waits for d scaled to the current speed. It returns early with
// ErrEvacuated or the context error.
func (s *Signals) Sleep(ctx context.Context, d time.Duration) error {
	d = s.Scale(d)
	if d <= 0 {
		if s.Evacuating() {
			return ErrEvacuated
		}
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-s.Evacuated():
		return ErrEvacuated
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WithEvacuation derives a context cancelled when the simulation is evacuated.
func (s *Signals) WithEvacuation(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-s.Evacuated():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Package supervisor runs one task per client group, keeps a registry of
// groups still in the restaurant and cancels every visit on shutdown.
package supervisor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/viant/kaiten/logging"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/service/dao"
	"github.com/viant/kaiten/service/dao/store"
	"github.com/viant/kaiten/service/group"
)

// ErrClosed is returned by Spawn after Close or Shutdown.
var ErrClosed = errors.New("supervisor: closed")

// RunFunc runs a single visit.
type RunFunc func(ctx context.Context, g *model.Group) (group.State, error)

// Visit is a registry record of a group in the restaurant.
type Visit struct {
	ID        model.GroupID
	Group     *model.Group
	StartedAt time.Time
	state     atomic.Int32
}

// State returns the last observed lifecycle state.
func (v *Visit) State() group.State { return group.State(v.state.Load()) }

// Service supervises group tasks
type Service struct {
	registry *store.MemoryStore[model.GroupID, Visit]
	logger   logr.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
	onDone   func(v *Visit, final group.State, err error)

	finished atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
}

// Option customises the supervisor.
type Option func(s *Service)

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDoneListener is called after every visit ends.
func WithDoneListener(fn func(v *Visit, final group.State, err error)) Option {
	return func(s *Service) {
		s.onDone = fn
	}
}

// New creates a supervisor whose tasks derive from ctx.
func New(ctx context.Context, options ...Option) *Service {
	s := &Service{
		registry: store.NewMemoryStore[model.GroupID, Visit](func(v *Visit) model.GroupID { return v.ID }).
			WithState(func(v *Visit) string { return v.State().String() }),
		logger: logr.Discard(),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Spawn starts the group's visit in its own task.
func (s *Service) Spawn(g *model.Group, run RunFunc) error {
	if g == nil || g.ID == 0 {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	visit := &Visit{ID: g.ID, Group: g, StartedAt: time.Now()}
	if err := s.registry.Save(s.ctx, visit); err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		final, err := run(s.ctx, g)
		visit.state.Store(int32(final))
		_ = s.registry.Delete(context.Background(), g.ID)
		switch {
		case err != nil:
			s.failed.Add(1)
			s.logger.V(logging.VERBOSE).Info("visit interrupted", "group", uint64(g.ID), "state", final.String(), "reason", err.Error())
		case final == group.Rejected:
			s.rejected.Add(1)
		default:
			s.finished.Add(1)
		}
		if s.onDone != nil {
			s.onDone(visit, final, err)
		}
	}()
	return nil
}

// Observe records a lifecycle transition; it is meant as the group service listener.
func (s *Service) Observe(id model.GroupID, st group.State) {
	if visit, err := s.registry.Load(context.Background(), id); err == nil {
		visit.state.Store(int32(st))
	}
}

// Present reports whether the group is still in the restaurant.
func (s *Service) Present(id model.GroupID) bool { return s.registry.Has(id) }

// Active lists groups in any of the states; no state lists everyone.
func (s *Service) Active(ctx context.Context, states ...group.State) ([]*Visit, error) {
	if len(states) == 0 {
		return s.registry.List(ctx)
	}
	names := make([]string, len(states))
	for i, st := range states {
		names[i] = st.String()
	}
	return s.registry.List(ctx, &dao.Parameter{Name: "State", Value: names})
}

// Len returns the number of groups in the restaurant.
func (s *Service) Len() int { return s.registry.Len() }

// Close stops accepting new visits.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Wait blocks until every spawned visit ended or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels every visit and waits for the tasks to exit.
func (s *Service) Shutdown() {
	s.Close()
	s.cancel()
	s.wg.Wait()
}

// Finished returns the number of visits that ended at a table.
func (s *Service) Finished() int64 { return s.finished.Load() }

// Rejected returns the number of groups turned away.
func (s *Service) Rejected() int64 { return s.rejected.Load() }

// Failed returns the number of visits interrupted by evacuation or cancellation.
func (s *Service) Failed() int64 { return s.failed.Load() }

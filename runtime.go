package kaiten

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/logging"
	"github.com/viant/kaiten/metrics"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/policy"
	"github.com/viant/kaiten/report"
	"github.com/viant/kaiten/service/admission"
	"github.com/viant/kaiten/service/allocator"
	"github.com/viant/kaiten/service/arrival"
	"github.com/viant/kaiten/service/belt"
	"github.com/viant/kaiten/service/event"
	"github.com/viant/kaiten/service/group"
	"github.com/viant/kaiten/service/kitchen"
	"github.com/viant/kaiten/service/ledger"
	"github.com/viant/kaiten/service/manager"
	"github.com/viant/kaiten/service/messaging/memory"
	"github.com/viant/kaiten/service/state"
	"github.com/viant/kaiten/service/supervisor"
	"github.com/viant/kaiten/tracing"
)

// Runtime holds the wired components of one simulation run.
type Runtime struct {
	config  *Config
	runID   string
	logger  logr.Logger
	journal *logging.Journal
	signals *control.Signals
	metrics bool

	ledger     *ledger.Ledger
	belt       *belt.Belt
	admission  *admission.Controller
	state      *state.State
	allocator  *allocator.Service
	groups     *group.Service
	kitchen    *kitchen.Service
	arrivals   *arrival.Service
	supervisor *supervisor.Service
	manager    *manager.Service
	events     *event.Service

	started atomic.Bool
}

func newRuntime(s *Service) (*Runtime, error) {
	cfg := s.config
	r := &Runtime{
		config:  cfg,
		runID:   s.runID,
		signals: s.signals,
		metrics: s.registerer != nil,
		events:  event.New(event.WithRunID(s.runID)),
	}
	r.journal = logging.NewJournal(s.logger.WithValues("run", s.runID), cfg.Journal)
	r.logger = r.journal.Logger()

	var onChange func(ledger.Delta, ledger.Snapshot)
	admissionOptions := []admission.Option{
		admission.WithSignals(r.signals),
		admission.WithLogger(r.logger.WithName("admission")),
	}
	var stateOptions []state.Option
	if r.metrics {
		onChange = metrics.RecordDelta
		admissionOptions = append(admissionOptions, admission.WithQueueObserver(metrics.RecordQueue))
		stateOptions = append(stateOptions, state.WithGuestObserver(metrics.RecordGuests))
	}
	if cfg.Queue.Barrier > 0 {
		admissionOptions = append(admissionOptions, admission.WithBarrier(cfg.Queue.Barrier))
	}
	r.ledger = ledger.New(onChange)

	var err error
	if r.belt, err = belt.New(cfg.Belt.Capacity,
		belt.WithLedger(r.ledger),
		belt.WithSignals(r.signals),
		belt.WithLogger(r.logger.WithName("belt"))); err != nil {
		return nil, err
	}
	if r.admission, err = admission.New(cfg.Queue.MaxNormal, cfg.Queue.MaxVIP, admissionOptions...); err != nil {
		return nil, err
	}
	tables := model.NewTables(cfg.TableCounts())
	if r.state, err = state.New(tables, r.belt, r.admission, r.ledger, r.signals, stateOptions...); err != nil {
		return nil, err
	}

	supervisorOptions := []supervisor.Option{supervisor.WithLogger(r.logger.WithName("supervisor"))}
	if r.metrics {
		supervisorOptions = append(supervisorOptions, supervisor.WithDoneListener(func(v *supervisor.Visit, final group.State, _ error) {
			metrics.RecordVisitDuration(final, time.Since(v.StartedAt))
		}))
	}
	r.supervisor = supervisor.New(context.Background(), supervisorOptions...)
	requests := memory.NewQueue[allocator.Request](memory.Config{QueueBuffer: cfg.Queue.MaxNormal + cfg.Queue.MaxVIP + model.Seats(tables) + 1})
	orders := memory.NewQueue[model.Order](memory.Config{QueueBuffer: cfg.Belt.Capacity * 4})

	allocatorConfig := cfg.Allocator
	allocatorConfig.Groups = cfg.Arrival.Groups
	if r.allocator, err = allocator.New(r.state,
		allocator.WithMessageQueue(requests),
		allocator.WithPolicy(policy.FromConfig(cfg.Policy)),
		allocator.WithPresence(r.supervisor.Present),
		allocator.WithLogger(r.logger.WithName("allocator")),
		allocator.WithConfig(allocatorConfig)); err != nil {
		return nil, err
	}
	if r.groups, err = group.New(r.state,
		group.WithRequests(requests),
		group.WithOrders(orders),
		group.WithSeating(r.allocator),
		group.WithListener(r.observe),
		group.WithLogger(r.logger.WithName("group")),
		group.WithConfig(cfg.Group)); err != nil {
		return nil, err
	}
	if r.kitchen, err = kitchen.New(r.state,
		kitchen.WithOrders(orders),
		kitchen.WithPresence(r.supervisor.Present),
		kitchen.WithLogger(r.logger.WithName("kitchen")),
		kitchen.WithConfig(cfg.Kitchen)); err != nil {
		return nil, err
	}
	if r.arrivals, err = arrival.New(r.signals,
		arrival.WithConfig(cfg.Arrival),
		arrival.WithLogger(r.logger.WithName("arrival"))); err != nil {
		return nil, err
	}
	if len(cfg.Schedule) > 0 {
		if r.manager, err = manager.New(r.signals, cfg.Schedule, manager.WithLogger(r.logger.WithName("manager"))); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// observe is the group lifecycle listener; it runs on the group's goroutine.
func (r *Runtime) observe(id model.GroupID, st group.State) {
	r.supervisor.Observe(id, st)
	transition := event.NewEvent(r.events.NewContext("transition", "group"), group.Transition{Group: id, State: st})
	if err := event.PublisherOf[group.Transition](r.events).TryPublish(transition); err != nil {
		r.logger.V(logging.TRACE).Info("transition event dropped", "group", uint64(id), "state", st.String())
	}
}

func (r *Runtime) onTransition(e *event.Event[group.Transition]) {
	if r.metrics {
		metrics.RecordVisit(e.Data.Group, e.Data.State)
	}
	r.logger.V(logging.TRACE).Info("visit", "group", uint64(e.Data.Group), "state", e.Data.State.String())
}

// Run opens the restaurant, lets groups arrive until the configured cap or
// closing time, waits for every group to leave and returns the report.
func (r *Runtime) Run(ctx context.Context) (ret *report.Report, err error) {
	if !r.started.CompareAndSwap(false, true) {
		return nil, errors.New("simulation already ran")
	}
	ctx, span := tracing.StartSpan(ctx, "simulation.run", "INTERNAL")
	span.WithAttributes(map[string]string{"run.id": r.runID})
	defer func() { tracing.EndSpan(span, err) }()

	journalCtx, stopJournal := context.WithCancel(context.Background())
	journalDone := make(chan struct{})
	go func() {
		defer close(journalDone)
		r.journal.Run(journalCtx)
	}()
	defer func() {
		stopJournal()
		<-journalDone
	}()
	event.SetListenerOf[group.Transition](context.Background(), r.events, r.onTransition)
	defer r.events.Shutdown()

	r.logger.Info("restaurant opened", "tables", r.state.TableCount(), "belt", r.belt.Capacity(), "speed", r.signals.Speed().String())
	if err = r.allocator.Start(ctx); err != nil {
		return nil, err
	}
	background, stopBackground := context.WithCancel(ctx)
	var wg sync.WaitGroup
	r.goBackground(&wg, "kitchen", func() error { return r.kitchen.Run(background) })
	r.goBackground(&wg, "belt", func() error { return r.belt.Spin(background, r.config.Belt.Rotation) })
	if r.manager != nil {
		r.goBackground(&wg, "manager", func() error { return r.manager.Run(background) })
	}
	stopReaper := context.AfterFunc(ctx, r.supervisor.Shutdown)
	defer stopReaper()

	spawn := func(g *model.Group) error { return r.supervisor.Spawn(g, r.groups.Run) }
	if arrErr := r.arrivals.Run(ctx, spawn); arrErr != nil && !errors.Is(arrErr, control.ErrEvacuated) {
		r.logger.Error(arrErr, "arrivals stopped")
	}
	r.supervisor.Close()
	r.logInside(ctx)
	if waitErr := r.supervisor.Wait(ctx); waitErr != nil {
		r.supervisor.Shutdown()
	}
	stopBackground()
	wg.Wait()
	r.allocator.Shutdown()
	if swept := r.belt.SweepOrphans(r.supervisor.Present); len(swept) > 0 {
		r.logger.V(logging.VERBOSE).Info("ordered dishes wasted at closing", "count", len(swept))
	}

	ret = r.Report()
	if checkErr := r.state.Check(); checkErr != nil {
		r.logger.Error(checkErr, "seating invariant violated")
	}
	if !ret.Balanced() {
		r.logger.Error(errors.New(strings.Join(ret.Mismatches(), "; ")), "MISMATCH")
	}
	r.logger.Info("restaurant closed",
		"evacuated", ret.Evacuated,
		"revenue", ret.Revenue,
		"groups", ret.Visits.Created,
		"journalDropped", r.journal.Dropped())
	return ret, ctx.Err()
}

// logInside reports the groups still in the restaurant once arrivals stopped.
func (r *Runtime) logInside(ctx context.Context) {
	waiting, err := r.supervisor.Active(ctx, group.Created, group.AwaitingSeat)
	if err != nil {
		return
	}
	dining, err := r.supervisor.Active(ctx, group.Seated)
	if err != nil {
		return
	}
	r.logger.Info("arrivals stopped", "waiting", len(waiting), "dining", len(dining))
}

func (r *Runtime) goBackground(wg *sync.WaitGroup, name string, fn func() error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := fn(); err != nil && !errors.Is(err, control.ErrEvacuated) && !errors.Is(err, context.Canceled) {
			r.logger.Error(err, "actor stopped", "actor", name)
		}
	}()
}

// Report snapshots the counters; it is consistent once every actor stopped.
func (r *Runtime) Report() *report.Report {
	ret := report.Collect(r.ledger.Snapshot(), r.belt.Remaining())
	ret.RunID = r.runID
	ret.Evacuated = r.signals.Evacuating()
	ret.Misses = r.belt.Misses()
	ret.Visits.Created = r.arrivals.Created()
	ret.Visits.Finished = r.supervisor.Finished()
	ret.Visits.Rejected = r.supervisor.Rejected()
	ret.Visits.Interrupted = r.supervisor.Failed()
	return ret
}

// RunID returns the run identifier.
func (r *Runtime) RunID() string { return r.runID }

// Signals returns the control state.
func (r *Runtime) Signals() *control.Signals { return r.signals }

// State returns the shared restaurant state.
func (r *Runtime) State() *state.State { return r.state }

// Supervisor returns the group supervisor.
func (r *Runtime) Supervisor() *supervisor.Service { return r.supervisor }

// Journal returns the asynchronous log journal.
func (r *Runtime) Journal() *logging.Journal { return r.journal }

package allocator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/logging"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/policy"
	"github.com/viant/kaiten/service/admission"
	"github.com/viant/kaiten/service/messaging"
	"github.com/viant/kaiten/service/state"
)

// Config represents allocator service configuration
type Config struct {
	// Groups is the number of groups after whose departure the restaurant
	// closes; zero disables the cap.
	Groups int `yaml:"-" json:"-"`
	// WorkerCount is the number of workers consuming requests
	WorkerCount int `yaml:"workers" json:"workers"`
	// SweepInterval is how often dishes ordered by departed groups are swept
	SweepInterval time.Duration `yaml:"sweepInterval" json:"sweepInterval"`
}

// DefaultConfig returns the default allocator configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount:   1,
		SweepInterval: time.Second,
	}
}

// Service seats and unseats groups
type Service struct {
	config  Config
	state   *state.State
	policy  *policy.Policy
	queue   messaging.Queue[Request]
	logger  logr.Logger
	present func(model.GroupID) bool

	drainMu   sync.Mutex
	vipStreak int

	finished   atomic.Int64
	seatings   atomic.Int64
	rejections atomic.Int64

	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
	stopOnce   sync.Once
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates an allocator over the shared state
func New(shared *state.State, options ...Option) (*Service, error) {
	if shared == nil {
		return nil, errors.New("state is required")
	}
	if shared.Admission == nil {
		return nil, errors.New("admission controller is required")
	}
	s := &Service{
		config:     DefaultConfig(),
		state:      shared,
		logger:     logr.Discard(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.config.WorkerCount <= 0 {
		s.config.WorkerCount = 1
	}
	return s, nil
}

// TrySeat seats the party at the first table accepting it.
func (s *Service) TrySeat(vip bool, size int, group model.GroupID) (int, bool) {
	table, ok := s.state.TrySeat(vip, size, group)
	if ok {
		s.seatings.Add(1)
		s.logger.V(logging.VERBOSE).Info("group seated", "group", uint64(group), "table", table, "size", size, "vip", vip)
	}
	return table, ok
}

// seat is the admission callback: it seats the entry and hands the table to
// the waiting group, undoing the seating when the group already gave up.
func (s *Service) seat(entry *admission.Entry) bool {
	table, ok := s.TrySeat(entry.VIP, entry.Size, entry.Group)
	if !ok {
		return false
	}
	if entry.Handoff != nil && !entry.Handoff.Deliver(admission.Assignment{Table: table}) {
		s.state.Vacate(entry.Group)
		s.seatings.Add(-1)
		s.logger.V(logging.DEBUG).Info("seating undone, group left", "group", uint64(entry.Group), "table", table)
		return false
	}
	entry.Ticket.Release()
	return true
}

// Assign seats the entry now when a table fits and no group of its class
// waits ahead of it, otherwise queues it. It returns whether the group was
// seated immediately.
func (s *Service) Assign(entry *admission.Entry) (bool, error) {
	if s.state.Signals.Terminating() {
		s.reject(entry)
		return false, s.state.Signals.Err()
	}
	seated, err := s.state.Admission.Admit(entry, s.seat)
	if errors.Is(err, control.ErrTerminated) || errors.Is(err, control.ErrEvacuated) {
		s.reject(entry)
		return false, err
	}
	if err != nil {
		entry.Ticket.Release()
		return false, fmt.Errorf("failed to admit group %d: %w", entry.Group, err)
	}
	if !seated {
		s.Drain()
	}
	return seated, nil
}

// Drain seats waiting groups until a full pass over both queues seats
// nobody. VIP entries go first unless the policy grants Normal a turn.
func (s *Service) Drain() int {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()
	firstFit := s.policy.FirstFit()
	count := 0
	for {
		var seated *admission.Entry
		for _, class := range s.order() {
			if seated = s.state.Admission.Scan(class, !firstFit, s.seat); seated != nil {
				break
			}
		}
		if seated == nil {
			return count
		}
		count++
		if seated.VIP {
			s.vipStreak++
		} else {
			s.vipStreak = 0
		}
	}
}

func (s *Service) order() []admission.Class {
	if s.policy.NormalFirst(s.vipStreak) {
		return []admission.Class{admission.Normal, admission.VIP}
	}
	return admission.Classes
}

// Vacate frees the group's table and sweeps its undelivered orders.
func (s *Service) Vacate(group model.GroupID) (int, []model.Dish) {
	_, table, _ := s.state.Vacate(group)
	var swept []model.Dish
	if s.state.Belt != nil {
		swept = s.state.Belt.Sweep(group)
	}
	return table, swept
}

// Finish records a departing group: its table is freed, dishes it ordered
// but never took are wasted and, when paid, its bill becomes revenue.
// Once the configured number of groups finished the restaurant closes.
func (s *Service) Finish(group *model.Group, paid bool) {
	table, swept := s.Vacate(group.ID)
	if len(swept) > 0 {
		s.logger.V(logging.VERBOSE).Info("ordered dishes wasted", "group", uint64(group.ID), "count", len(swept))
	}
	if paid {
		bill := group.Bill()
		s.state.Ledger.Paid(bill)
		s.logger.Info("GROUP PAID OFF", "group", uint64(group.ID), "table", table, "bill", bill, "eaten", group.Eaten())
	}
	finished := s.finished.Add(1)
	if s.config.Groups > 0 && finished >= int64(s.config.Groups) && !s.state.Signals.Terminating() {
		s.logger.Info("all groups served, closing", "groups", finished)
		s.state.Signals.Terminate()
	}
	s.Drain()
}

// RejectWaiting empties the waiting queues and tells every waiting group
// it will not be seated.
func (s *Service) RejectWaiting() int {
	entries := s.state.Admission.Evict()
	for _, entry := range entries {
		s.reject(entry)
	}
	if len(entries) > 0 {
		s.logger.V(logging.VERBOSE).Info("waiting groups rejected", "count", len(entries))
	}
	return len(entries)
}

func (s *Service) reject(entry *admission.Entry) {
	entry.Ticket.Release()
	if entry.Handoff != nil && entry.Handoff.Deliver(admission.Assignment{Table: -1, Rejected: true}) {
		s.rejections.Add(1)
	}
}

// Finished returns the number of departed groups.
func (s *Service) Finished() int64 { return s.finished.Load() }

// Seatings returns the number of seatings performed.
func (s *Service) Seatings() int64 { return s.seatings.Load() }

// Rejections returns the number of groups turned away.
func (s *Service) Rejections() int64 { return s.rejections.Load() }

// Start launches the request workers and the closing watcher.
func (s *Service) Start(ctx context.Context) error {
	if s.queue == nil {
		return errors.New("message queue is required")
	}
	if p := policy.FromContext(ctx); p != nil && s.policy == nil {
		s.policy = p
	}
	ctx, cancel := s.state.Signals.WithEvacuation(ctx)
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, workerCancel := context.WithCancel(ctx)
		w := &worker{id: i, service: s, ctx: workerCtx, cancelFn: workerCancel}
		s.workers = append(s.workers, w)
		s.workerWg.Add(1)
		go w.run()
	}
	s.workerWg.Add(1)
	go func() {
		defer s.workerWg.Done()
		defer cancel()
		s.watch(ctx)
	}()
	return nil
}

// watch rejects waiting groups once the restaurant closes and periodically
// sweeps dishes ordered by departed groups.
func (s *Service) watch(ctx context.Context) {
	terminated := s.state.Signals.Terminated()
	var sweep <-chan time.Time
	if s.present != nil && s.config.SweepInterval > 0 && s.state.Belt != nil {
		ticker := time.NewTicker(s.config.SweepInterval)
		defer ticker.Stop()
		sweep = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdownCh:
			return
		case <-terminated:
			terminated = nil
			s.RejectWaiting()
		case <-sweep:
			if swept := s.state.Belt.SweepOrphans(s.present); len(swept) > 0 {
				s.logger.V(logging.DEBUG).Info("orphan dishes wasted", "count", len(swept))
			}
		}
	}
}

func (w *worker) run() {
	defer w.service.workerWg.Done()
	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			return
		}
		if msg == nil {
			continue
		}
		if pErr := w.service.handle(msg.T()); pErr != nil {
			w.service.logger.V(logging.DEBUG).Info("request not served", "worker", w.id, "error", pErr.Error())
		}
		_ = msg.Ack()
	}
}

func (s *Service) handle(request *Request) error {
	switch request.Kind {
	case Assign:
		if request.Entry == nil {
			return errors.New("assign request without entry")
		}
		_, err := s.Assign(request.Entry)
		return err
	case Finished:
		if request.Group == nil {
			return errors.New("finished request without group")
		}
		s.Finish(request.Group, request.Paid)
	case BarrierCheck:
		if s.state.Admission.GateOpen() {
			s.Drain()
		}
	default:
		return fmt.Errorf("unsupported request kind: %v", request.Kind)
	}
	return nil
}

// Shutdown stops the workers, waits for them to exit and serves the
// requests still queued.
func (s *Service) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.shutdownCh)
		for _, w := range s.workers {
			w.cancelFn()
		}
	})
	s.workerWg.Wait()
	s.drainRequests()
}

// drainRequests settles pending departures and turns away pending seating requests.
func (s *Service) drainRequests() {
	if s.queue == nil {
		return
	}
	for {
		msg, ok := s.queue.TryConsume()
		if !ok {
			return
		}
		request := msg.T()
		if request.Kind == Assign && request.Entry != nil {
			s.reject(request.Entry)
		} else if err := s.handle(request); err != nil {
			s.logger.V(logging.DEBUG).Info("request not served", "error", err.Error())
		}
		_ = msg.Ack()
	}
}

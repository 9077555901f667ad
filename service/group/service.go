package group

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/logging"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/service/admission"
	"github.com/viant/kaiten/service/allocator"
	"github.com/viant/kaiten/service/belt"
	"github.com/viant/kaiten/service/messaging"
	"github.com/viant/kaiten/service/state"
	"github.com/viant/kaiten/tracing"
	"golang.org/x/sync/errgroup"
)

// Config represents group behaviour configuration
type Config struct {
	// OrderChance is the probability that an adult places a premium order before each dish
	OrderChance float64 `yaml:"orderChance" json:"orderChance"`
	// EatTime is the time spent on one dish at normal speed
	EatTime time.Duration `yaml:"eatTime" json:"eatTime"`
	// Reach limits a person to belt slots within Reach of its table; zero means the whole belt
	Reach int `yaml:"reach" json:"reach"`
}

// DefaultConfig returns the default group configuration
func DefaultConfig() Config {
	return Config{
		OrderChance: 0.2,
		EatTime:     100 * time.Millisecond,
	}
}

// Seating vacates a table held by a group that leaves without reporting.
type Seating interface {
	Vacate(group model.GroupID) (int, []model.Dish)
}

// Service runs group visits
type Service struct {
	config   Config
	state    *state.State
	requests messaging.Queue[allocator.Request]
	orders   messaging.Queue[model.Order]
	seating  Seating
	listener func(model.GroupID, State)
	logger   logr.Logger
}

// New creates a group service
func New(shared *state.State, options ...Option) (*Service, error) {
	if shared == nil || shared.Belt == nil || shared.Admission == nil {
		return nil, errors.New("state with belt and admission is required")
	}
	s := &Service{config: DefaultConfig(), state: shared, logger: logr.Discard()}
	for _, opt := range options {
		opt(s)
	}
	if s.requests == nil {
		return nil, errors.New("allocator request queue is required")
	}
	if s.seating == nil {
		return nil, errors.New("seating is required")
	}
	return s, nil
}

// Run takes the group through its visit and returns the final state. A
// non-nil error means the visit was cut short by evacuation or
// cancellation; a group turned away at closing is Rejected without error.
func (s *Service) Run(ctx context.Context, g *model.Group) (final State, err error) {
	ctx, span := tracing.StartSpan(ctx, "group.visit", "INTERNAL")
	span.WithAttributes(map[string]string{
		"group.id":   strconv.FormatUint(uint64(g.ID), 10),
		"group.size": strconv.Itoa(g.Size),
		"group.vip":  strconv.FormatBool(g.VIP),
	})
	defer func() {
		span.WithAttributes(map[string]string{"group.state": final.String()})
		tracing.EndSpan(span, err)
	}()
	logger := s.logger.WithValues("group", uint64(g.ID))

	s.transition(g, Created)
	if _, opened := s.state.Admission.RecordArrival(); opened {
		_ = s.requests.TryPublish(&allocator.Request{Kind: allocator.BarrierCheck})
	}
	s.transition(g, AwaitingSeat)
	table, err := s.awaitSeat(ctx, g)
	if err != nil || table < 0 {
		s.transition(g, Rejected)
		if err == nil || errors.Is(err, control.ErrTerminated) {
			logger.V(logging.VERBOSE).Info("group turned away")
			return Rejected, nil
		}
		return Rejected, err
	}

	g.SetTable(table)
	s.transition(g, Seated)
	span.AddEvent("seated", map[string]string{"table": strconv.Itoa(table)})
	if err = s.dine(ctx, g, table); err != nil {
		_, swept := s.seating.Vacate(g.ID)
		logger.V(logging.VERBOSE).Info("group left without paying", "reason", err.Error(), "wasted", len(swept))
		s.transition(g, Finished)
		return Finished, err
	}
	request := &allocator.Request{Kind: allocator.Finished, Group: g, Paid: true}
	if pubErr := s.requests.Publish(ctx, request); pubErr != nil {
		s.seating.Vacate(g.ID)
		s.transition(g, Finished)
		return Finished, pubErr
	}
	s.transition(g, Finished)
	return Finished, nil
}

// awaitSeat returns the assigned table, or -1 when the allocator turned the group away.
func (s *Service) awaitSeat(ctx context.Context, g *model.Group) (int, error) {
	ticket, err := s.state.Admission.RequestEntry(ctx, g.VIP)
	if err != nil {
		return -1, err
	}
	entry := &admission.Entry{Group: g.ID, Size: g.Size, VIP: g.VIP, Ticket: ticket, Handoff: admission.NewHandoff()}
	if err = s.requests.Publish(ctx, &allocator.Request{Kind: allocator.Assign, Group: g, Entry: entry}); err != nil {
		ticket.Release()
		return -1, err
	}
	select {
	case assignment := <-entry.Handoff.Reply():
		if assignment.Rejected {
			return -1, nil
		}
		return assignment.Table, nil
	case <-s.state.Signals.Terminated():
		err = s.state.Signals.Err()
	case <-ctx.Done():
		err = ctx.Err()
	}
	// the allocator may have seated the group after it gave up; a seat taken
	// at closing is kept, seated groups finish their meal
	if assignment, ok := entry.Handoff.Close(); ok && !assignment.Rejected {
		if errors.Is(err, control.ErrTerminated) {
			return assignment.Table, nil
		}
		s.seating.Vacate(g.ID)
	}
	s.state.Admission.Withdraw(g.ID)
	ticket.Release()
	return -1, err
}

// dine runs one actor per person until the group has eaten everything.
func (s *Service) dine(ctx context.Context, g *model.Group, table int) error {
	shared := s.state
	window := belt.Near(table, shared.TableCount(), shared.Belt.Capacity(), s.config.Reach)
	match := belt.ForGroup(g.ID).Within(window)
	eg, egCtx := errgroup.WithContext(ctx)
	for person := 0; person < g.Size; person++ {
		adult := person < g.Adults
		eg.Go(func() error {
			return s.eat(egCtx, g, adult, match)
		})
	}
	return eg.Wait()
}

func (s *Service) eat(ctx context.Context, g *model.Group, adult bool, match belt.Matcher) error {
	shared := s.state
	for {
		if shared.Signals.Evacuating() {
			return control.ErrEvacuated
		}
		if !g.Reserve() {
			return nil
		}
		if adult {
			s.order(g)
		}
		dish, ok, err := shared.Belt.ConsumeMatching(ctx, match)
		if err != nil {
			g.Unreserve()
			return err
		}
		if !ok {
			g.Unreserve()
			if err = shared.Signals.Sleep(ctx, shared.Signals.PollInterval()); err != nil {
				return err
			}
			continue
		}
		g.Eat(dish.Color)
		shared.Ledger.Sold(dish)
		s.logger.V(logging.DEBUG).Info("dish eaten", "group", uint64(g.ID), "dish", dish.ID, "color", dish.Color.String())
		if err = shared.Signals.Sleep(ctx, s.config.EatTime); err != nil {
			return err
		}
	}
}

func (s *Service) order(g *model.Group) {
	if s.orders == nil || s.config.OrderChance <= 0 || rand.Float64() >= s.config.OrderChance {
		return
	}
	if !g.TakeOrder() {
		return
	}
	premium := model.PremiumColors()
	order := &model.Order{Group: g.ID, Color: premium[rand.IntN(len(premium))]}
	if err := s.orders.TryPublish(order); err != nil {
		s.logger.V(logging.DEBUG).Info("premium order dropped", "group", uint64(g.ID), "error", err.Error())
		return
	}
	s.logger.V(logging.DEBUG).Info("premium order placed", "group", uint64(g.ID), "color", order.Color.String())
}

func (s *Service) transition(g *model.Group, st State) {
	if s.listener != nil {
		s.listener(g.ID, st)
	}
}

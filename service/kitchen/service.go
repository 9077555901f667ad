package kitchen

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/logging"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/service/belt"
	"github.com/viant/kaiten/service/messaging"
	"github.com/viant/kaiten/service/state"
	"github.com/viant/kaiten/tracing"
)

// Config represents kitchen configuration
type Config struct {
	// ThinkTime is the base time between two dishes at normal speed
	ThinkTime time.Duration `yaml:"thinkTime" json:"thinkTime"`
	// Jitter adds a random [0, Jitter) delay to every think time
	Jitter time.Duration `yaml:"jitter" json:"jitter"`
	// PremiumBeforeGeneric holds generic cooking back until that many premium dishes were cooked
	PremiumBeforeGeneric int `yaml:"premiumBeforeGeneric" json:"premiumBeforeGeneric"`
	// Stress switches to non-blocking production; the kitchen idles once the belt is full
	Stress bool `yaml:"stress" json:"stress"`
}

// DefaultConfig returns the default kitchen configuration
func DefaultConfig() Config {
	return Config{
		ThinkTime: 250 * time.Millisecond,
		Jitter:    250 * time.Millisecond,
	}
}

// Service is the kitchen production loop
type Service struct {
	config  Config
	state   *state.State
	orders  messaging.Queue[model.Order]
	present func(model.GroupID) bool
	logger  logr.Logger

	cooked        atomic.Int64
	premiumCooked atomic.Int64
	dropped       atomic.Int64
}

// Option customises the kitchen.
type Option func(s *Service)

// WithOrders sets the premium order queue.
func WithOrders(queue messaging.Queue[model.Order]) Option {
	return func(s *Service) {
		s.orders = queue
	}
}

// WithPresence drops orders of groups that already left.
func WithPresence(present func(model.GroupID) bool) Option {
	return func(s *Service) {
		s.present = present
	}
}

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConfig sets the configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// New creates a kitchen
func New(shared *state.State, options ...Option) (*Service, error) {
	if shared == nil || shared.Belt == nil {
		return nil, errors.New("state with belt is required")
	}
	s := &Service{config: DefaultConfig(), state: shared, logger: logr.Discard()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Cooked returns the number of dishes placed on the belt.
func (s *Service) Cooked() int64 { return s.cooked.Load() }

// PremiumCooked returns the number of ordered dishes placed on the belt.
func (s *Service) PremiumCooked() int64 { return s.premiumCooked.Load() }

// Dropped returns the number of orders discarded because their group left.
func (s *Service) Dropped() int64 { return s.dropped.Load() }

// Run cooks until the context is done or the restaurant is evacuated.
func (s *Service) Run(ctx context.Context) error {
	signals := s.state.Signals
	for {
		if signals.Evacuating() {
			return control.ErrEvacuated
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
		dish, ok := s.next()
		if !ok {
			if err := s.pause(ctx, signals.PollInterval()); err != nil {
				return err
			}
			continue
		}
		if err := s.cook(ctx, dish); err != nil {
			if errors.Is(err, belt.ErrBeltFull) {
				s.logger.Info("BELT FULL", "cooked", s.cooked.Load())
				select {
				case <-ctx.Done():
					return nil
				case <-signals.Evacuated():
					return control.ErrEvacuated
				}
			}
			return s.stopped(ctx, err)
		}
		wait := s.config.ThinkTime
		if s.config.Jitter > 0 {
			wait += rand.N(s.config.Jitter)
		}
		if err := s.pause(ctx, wait); err != nil {
			return err
		}
	}
}

// next picks a pending premium order, or a generic dish when allowed.
func (s *Service) next() (model.Dish, bool) {
	for s.orders != nil {
		msg, ok := s.orders.TryConsume()
		if !ok {
			break
		}
		order := msg.T()
		_ = msg.Ack()
		if s.present != nil && !s.present(order.Group) {
			s.dropped.Add(1)
			s.logger.V(logging.DEBUG).Info("order dropped, group left", "group", uint64(order.Group))
			continue
		}
		return model.NewDish(order.Color, order.Group), true
	}
	if s.premiumCooked.Load() < int64(s.config.PremiumBeforeGeneric) {
		return model.Dish{}, false
	}
	return model.NewDish(model.Color(rand.IntN(model.GenericColors)), 0), true
}

func (s *Service) cook(ctx context.Context, dish model.Dish) (err error) {
	ctx, span := tracing.StartSpan(ctx, "kitchen.cook", "PRODUCER")
	defer func() { tracing.EndSpan(span, err) }()
	var slot int
	if s.config.Stress {
		slot, err = s.state.Belt.TryProduce(dish)
	} else {
		slot, err = s.state.Belt.Produce(ctx, dish)
	}
	if err != nil {
		return err
	}
	s.cooked.Add(1)
	if !dish.Generic() {
		s.premiumCooked.Add(1)
	}
	span.WithAttributes(map[string]string{
		"dish.color": dish.Color.String(),
		"dish.slot":  strconv.Itoa(slot),
	})
	s.logger.V(logging.VERBOSE).Info("dish cooked", "slot", slot, "color", dish.Color.String(), "price", dish.Color.Price(), "target", uint64(dish.Target))
	return nil
}

func (s *Service) pause(ctx context.Context, d time.Duration) error {
	return s.stopped(ctx, s.state.Signals.Sleep(ctx, d))
}

// stopped maps a wait error to the loop result: cancellation ends the loop
// quietly, evacuation is reported.
func (s *Service) stopped(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && !errors.Is(err, control.ErrEvacuated) {
		return nil
	}
	return err
}

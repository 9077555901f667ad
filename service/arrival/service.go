// Package arrival generates client groups at random intervals until a fixed
// number of groups was created or the restaurant's closing time is reached.
package arrival

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/internal/clock"
	"github.com/viant/kaiten/logging"
	"github.com/viant/kaiten/model"
)

// Config represents arrival configuration
type Config struct {
	// MaxInterval bounds the random pause between two arrivals, at normal speed
	MaxInterval time.Duration `yaml:"maxInterval" json:"maxInterval"`
	// Groups caps the number of created groups; zero means unlimited
	Groups int `yaml:"groups" json:"groups"`
	// ClosingAfter closes the restaurant that long after opening; zero means never
	ClosingAfter time.Duration `yaml:"closingAfter" json:"closingAfter"`
	VIPChance    float64       `yaml:"vipChance" json:"vipChance"`
	MinDishes    int           `yaml:"minDishes" json:"minDishes"`
	MaxDishes    int           `yaml:"maxDishes" json:"maxDishes"`
	MaxOrders    int           `yaml:"maxOrders" json:"maxOrders"`
	// Seed makes group generation reproducible when non-zero
	Seed uint64 `yaml:"seed" json:"seed"`
}

// DefaultConfig returns the default arrival configuration
func DefaultConfig() Config {
	return Config{
		MaxInterval: 500 * time.Millisecond,
		VIPChance:   0.02,
		MinDishes:   3,
		MaxDishes:   10,
		MaxOrders:   3,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Groups < 0 {
		return fmt.Errorf("groups must be >= 0, got %d", c.Groups)
	}
	if c.Groups == 0 && c.ClosingAfter <= 0 {
		return errors.New("either groups or closingAfter has to be set")
	}
	if c.MinDishes < 1 || c.MaxDishes < c.MinDishes {
		return fmt.Errorf("invalid dish range [%d, %d]", c.MinDishes, c.MaxDishes)
	}
	if c.VIPChance < 0 || c.VIPChance > 1 {
		return fmt.Errorf("vipChance must be within [0, 1], got %v", c.VIPChance)
	}
	if c.MaxOrders < 0 || c.MaxInterval < 0 {
		return errors.New("maxOrders and maxInterval must be >= 0")
	}
	return nil
}

// Service generates groups
type Service struct {
	config  Config
	signals *control.Signals
	logger  logr.Logger

	mu      sync.Mutex
	rnd     *rand.Rand
	nextID  atomic.Uint64
	created atomic.Int64
}

// Option customises the generator.
type Option func(s *Service)

// WithConfig sets the configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a generator
func New(signals *control.Signals, options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig(), signals: signals, logger: logr.Discard()}
	for _, opt := range options {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	seed := s.config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	s.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return s, nil
}

// Created returns the number of generated groups.
func (s *Service) Created() int64 { return s.created.Load() }

// Generate creates the next group: size 1..4, VIP with VIPChance and then
// without children, otherwise up to size-1 children.
func (s *Service) Generate() *model.Group {
	s.mu.Lock()
	size := s.rnd.IntN(4) + 1
	vip := s.rnd.Float64() < s.config.VIPChance
	children := 0
	if !vip {
		children = s.rnd.IntN(size)
	}
	dishes := s.config.MinDishes + s.rnd.IntN(s.config.MaxDishes-s.config.MinDishes+1)
	orders := 0
	if s.config.MaxOrders > 0 {
		orders = s.rnd.IntN(s.config.MaxOrders + 1)
	}
	s.mu.Unlock()
	s.created.Add(1)
	return model.NewGroup(model.GroupID(s.nextID.Add(1)), size, children, vip, dishes, orders)
}

func (s *Service) interval() time.Duration {
	if s.config.MaxInterval <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.rnd.Int64N(int64(s.config.MaxInterval)))
}

// Run hands new groups to spawn until the cap is reached, the closing time
// passes or the restaurant is terminated. Reaching the closing time
// triggers a graceful terminate.
func (s *Service) Run(ctx context.Context, spawn func(*model.Group) error) error {
	var closing time.Time
	if s.config.ClosingAfter > 0 {
		closing = clock.Now().Add(s.config.ClosingAfter)
	}
	for {
		if s.signals.Evacuating() {
			return control.ErrEvacuated
		}
		if s.signals.Terminating() {
			return nil
		}
		if s.config.Groups > 0 && s.created.Load() >= int64(s.config.Groups) {
			s.logger.V(logging.VERBOSE).Info("all groups arrived", "groups", s.created.Load())
			return nil
		}
		if clock.Passed(closing) {
			s.logger.Info("restaurant closing", "groups", s.created.Load())
			s.signals.Terminate()
			return nil
		}
		g := s.Generate()
		s.logger.V(logging.VERBOSE).Info("group arrived", "group", uint64(g.ID), "size", g.Size, "adults", g.Adults, "children", g.Children, "vip", g.VIP, "dishes", g.Dishes)
		if err := spawn(g); err != nil {
			return err
		}
		if err := s.sleep(ctx); err != nil {
			if errors.Is(err, control.ErrEvacuated) {
				return err
			}
			return nil
		}
	}
}

func (s *Service) sleep(ctx context.Context) error {
	wait := s.interval()
	select {
	case <-s.signals.Terminated():
		return nil
	default:
	}
	sleepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.signals.Terminated():
			cancel()
		case <-sleepCtx.Done():
		}
	}()
	err := s.signals.Sleep(sleepCtx, wait)
	if err != nil && ctx.Err() == nil && !errors.Is(err, control.ErrEvacuated) {
		return nil
	}
	return err
}

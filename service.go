package kaiten

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/internal/idgen"
	"github.com/viant/kaiten/logging"
	"github.com/viant/kaiten/metrics"
	"github.com/viant/kaiten/report"
	"github.com/viant/kaiten/tracing"
)

const (
	serviceName    = "kaiten"
	serviceVersion = "0.1.0"
)

// Service is the simulation façade: it validates the configuration, builds
// the ambient stack and owns one Runtime.
type Service struct {
	config     *Config
	runID      string
	logger     *logr.Logger
	flush      func() error
	signals    *control.Signals
	registerer prometheus.Registerer
	runtime    *Runtime
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.runID == "" {
		s.runID = idgen.RunID()
	}
	if s.logger == nil {
		logger, flush, err := logging.New(s.config.Logging)
		if err != nil {
			return err
		}
		s.logger, s.flush = &logger, flush
	}
	if s.config.Tracing.Enabled {
		if err := tracing.Init(serviceName, serviceVersion, s.config.Tracing.Output); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	if s.signals == nil {
		speed, err := control.ParseSpeed(s.config.Speed)
		if err != nil {
			return err
		}
		s.signals = control.New(speed, s.config.PollInterval)
	}
	if s.registerer != nil {
		metrics.Register(s.registerer)
	}
	var err error
	s.runtime, err = newRuntime(s)
	return err
}

// Runtime returns the wired components.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Signals returns the control state shared by every actor.
func (s *Service) Signals() *control.Signals {
	return s.signals
}

// Config returns the validated configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Run executes the simulation to completion and returns the final report.
func (s *Service) Run(ctx context.Context) (*report.Report, error) {
	return s.runtime.Run(ctx)
}

// Close flushes the logger and the tracer provider.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	if err := tracing.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.flush != nil {
		// stdout/stderr sync fails with EINVAL on terminals
		_ = s.flush()
	}
	return errors.Join(errs...)
}

// New creates a simulation; a nil config means DefaultConfig. Every setup
// failure is reported wrapped in ErrInit.
func New(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	ret := &Service{config: config}
	if err := ret.init(options); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	return ret, nil
}

package kaiten

import (
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the simulation service
type Option func(s *Service)

// WithLogger sets the backing logger; by default one is built from Config.Logging.
func WithLogger(logger logr.Logger) Option {
	return func(s *Service) {
		s.logger = &logger
	}
}

// WithSignals shares control signals with the caller, e.g. an OS signal handler.
func WithSignals(signals *control.Signals) Option {
	return func(s *Service) {
		s.signals = signals
	}
}

// WithMetrics registers the Prometheus collectors and feeds them during the run.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Service) {
		s.registerer = reg
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(runID string) Option {
	return func(s *Service) {
		s.runID = runID
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times; the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/viant/kaiten"
	"github.com/viant/kaiten/logging"
)

// Options contains the command-line configuration.
type Options struct {
	ConfigURL    string
	Groups       int
	ClosingAfter time.Duration
	Speed        string
	Stress       bool
	//
	// Diagnostics.
	//
	LogLevel      int
	LogFormat     string
	Trace         bool
	TraceOutput   string
	MetricsOutput string
	ReportFormat  string
	ReportOutput  string

	// internal
	fs *pflag.FlagSet
}

// NewOptions returns options initialized with default values.
func NewOptions() *Options {
	return &Options{
		Speed:        "normal",
		LogLevel:     logging.DEFAULT,
		LogFormat:    "console",
		ReportFormat: "text",
	}
}

// AddFlags binds the Options fields to command-line flags on the given FlagSet.
func (opts *Options) AddFlags(fs *pflag.FlagSet) {
	if fs == nil {
		fs = pflag.CommandLine
	}
	opts.fs = fs

	fs.StringVarP(&opts.ConfigURL, "config", "c", opts.ConfigURL,
		"Config URL (file path, file://, mem://, ...); defaults apply when empty.")
	fs.IntVarP(&opts.Groups, "groups", "g", opts.Groups,
		"Number of groups to serve; the restaurant closes after the last one leaves.")
	fs.DurationVar(&opts.ClosingAfter, "closing-after", opts.ClosingAfter,
		"Close the restaurant that long after opening.")
	fs.StringVar(&opts.Speed, "speed", opts.Speed,
		"Initial simulation speed: slow, normal or fast.")
	fs.BoolVar(&opts.Stress, "stress", opts.Stress,
		"Non-blocking kitchen: stop cooking once the belt is full.")
	fs.IntVarP(&opts.LogLevel, "v", "v", opts.LogLevel,
		"Number for the log level verbosity.")
	fs.StringVar(&opts.LogFormat, "log-format", opts.LogFormat,
		"Log encoding: console or json.")
	fs.BoolVar(&opts.Trace, "trace", opts.Trace,
		"Export OpenTelemetry spans to stdout or --trace-output.")
	fs.StringVar(&opts.TraceOutput, "trace-output", opts.TraceOutput,
		"File receiving exported spans; implies --trace.")
	fs.StringVar(&opts.MetricsOutput, "metrics-output", opts.MetricsOutput,
		"URL receiving Prometheus metrics in text format after the run.")
	fs.StringVar(&opts.ReportFormat, "report-format", opts.ReportFormat,
		"Final report format: text, json or yaml.")
	fs.StringVar(&opts.ReportOutput, "report-output", opts.ReportOutput,
		"URL receiving the final report; stdout when empty.")
}

// Validate checks the Options for invalid or conflicting values.
func (opts *Options) Validate() error {
	if opts.Groups < 0 {
		return fmt.Errorf("invalid value %d for flag %q: must be >= 0", opts.Groups, "groups")
	}
	if opts.ClosingAfter < 0 {
		return fmt.Errorf("invalid value %v for flag %q: must be >= 0", opts.ClosingAfter, "closing-after")
	}
	if opts.LogLevel < logging.DEFAULT || opts.LogLevel > logging.TRACE {
		return fmt.Errorf("invalid value %d for flag %q: must be within [%d, %d]", opts.LogLevel, "v", logging.DEFAULT, logging.TRACE)
	}
	switch strings.ToLower(opts.ReportFormat) {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid value %q for flag %q: must be text, json or yaml", opts.ReportFormat, "report-format")
	}
	return nil
}

func (opts *Options) changed(name string) bool {
	if opts.fs == nil {
		return false
	}
	flag := opts.fs.Lookup(name)
	return flag != nil && flag.Changed
}

// Config loads the config document, if any, and applies explicitly set flags over it.
func (opts *Options) Config(ctx context.Context) (*kaiten.Config, error) {
	cfg := kaiten.DefaultConfig()
	if opts.ConfigURL != "" {
		loaded, err := kaiten.LoadConfig(ctx, opts.ConfigURL)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.changed("groups") {
		cfg.Arrival.Groups = opts.Groups
	}
	if opts.changed("closing-after") {
		cfg.Arrival.ClosingAfter = opts.ClosingAfter
	}
	if opts.changed("speed") {
		cfg.Speed = opts.Speed
	}
	if opts.changed("stress") {
		cfg.Kitchen.Stress = opts.Stress
	}
	if opts.changed("v") {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.changed("log-format") {
		cfg.Logging.Format = opts.LogFormat
	}
	if opts.Trace || opts.TraceOutput != "" {
		cfg.Tracing.Enabled = true
		cfg.Tracing.Output = opts.TraceOutput
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", kaiten.ErrInit, err)
	}
	return cfg, nil
}

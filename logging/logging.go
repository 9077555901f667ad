// Package logging builds the simulation logger: logr on top of zap, plus a
// best-effort journal that keeps actor goroutines from blocking on output.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logger.V.
const (
	DEFAULT = 0
	VERBOSE = 3
	DEBUG   = 4
	TRACE   = 5
)

// Config controls the zap backend.
type Config struct {
	Level  int    `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// DefaultConfig returns console logging to stdout at the default level.
func DefaultConfig() Config {
	return Config{Level: DEFAULT, Format: "console", Output: "stdout"}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Level < DEFAULT || c.Level > TRACE {
		return fmt.Errorf("log level must be within [%d, %d], got %d", DEFAULT, TRACE, c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", c.Format)
	}
	return nil
}

// New builds a logr.Logger backed by zap. The returned sync function flushes
// buffered output.
func New(config Config) (logr.Logger, func() error, error) {
	if err := config.Validate(); err != nil {
		return logr.Discard(), nil, err
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Sampling = nil
	zapConfig.Encoding = "console"
	if strings.EqualFold(config.Format, "json") {
		zapConfig.Encoding = "json"
	}
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.Level = zap.NewAtomicLevelAt(zapcore.Level(-1 * config.Level))
	output := config.Output
	if output == "" {
		output = "stdout"
	}
	zapConfig.OutputPaths = []string{output}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	zapLog, err := zapConfig.Build()
	if err != nil {
		return logr.Discard(), nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(zapLog), zapLog.Sync, nil
}

// NewTestLogger creates a development logger at TRACE verbosity.
func NewTestLogger() logr.Logger {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapcore.Level(-1 * TRACE))
	zapLog, err := zapConfig.Build()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zapLog)
}

var errUnspecified = fmt.Errorf("unspecified error")

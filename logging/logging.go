// Package logging builds the structured loggers used by the command line.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel only reports failures: rejected transactions are logged at
// debug level and stay silent unless asked for.
const DefaultLevel = "error"

// New creates a JSON logger writing to stderr at the given level
// ("debug", "info", "warn", "error"). An empty level means DefaultLevel.
func New(level string) (*zap.Logger, error) {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	// one entry per rejected record must not be dropped.
	cfg.Sampling = nil
	cfg.DisableStacktrace = true

	return cfg.Build()
}

// Nop returns a logger that drops all output. Useful for tests.
func Nop() *zap.Logger { return zap.NewNop() }

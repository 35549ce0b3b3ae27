// Package logging builds the zap loggers used by printqueue.
// Logs go to stderr so they never mix with the report on stdout.
package logging

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"printqueue/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryParse    Category = "parse"    // Input reading
	CategoryClassify Category = "classify" // Valid/invalid split
	CategoryRepair   Category = "repair"   // Reordering and post-repair checks
	CategoryAudit    Category = "audit"    // Mangle violation audit
	CategoryReport   Category = "report"   // Report rendering
)

// Logger hands out per-category child loggers of one base logger.
type Logger struct {
	base *zap.Logger
	cfg  config.LoggingConfig
}

// New builds the base logger from cfg. verbose forces debug level.
// Every entry carries a run_id field.
func New(cfg config.LoggingConfig, verbose bool) (*Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	base, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return Wrap(base.With(zap.String("run_id", uuid.NewString())), cfg), nil
}

// Wrap adopts an existing zap logger, e.g. zap.NewNop() or a test observer.
func Wrap(base *zap.Logger, cfg config.LoggingConfig) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{base: base, cfg: cfg}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return Wrap(zap.NewNop(), config.LoggingConfig{})
}

// Get returns the named logger for category, or a no-op logger when the
// category is disabled in config.
func (l *Logger) Get(category Category) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	if !l.cfg.IsCategoryEnabled(string(category)) {
		return zap.NewNop()
	}
	return l.base.Named(string(category))
}

// Base returns the root logger.
func (l *Logger) Base() *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.base
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.base.Sync()
}

// Package logging provides config-driven category loggers for robkit.
// All categories share one zap core. Categories are silent unless debug mode
// is on, and each one can be switched off on its own.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot       Category = "boot"       // CLI startup, config loading
	CategoryAssessment Category = "assessment" // Domain and instrument evaluation
	CategoryBatch      Category = "batch"      // Batch fan-out
	CategoryAudit      Category = "audit"      // Divergence rules
	CategoryProposer   Category = "proposer"   // Remote answer proposals
)

// Settings mirrors config.LoggingConfig so that config can be loaded before
// any logger exists.
type Settings struct {
	Level      string
	Format     string // json, console
	File       string
	DebugMode  bool
	Categories map[string]bool
}

// Logger is a category logger. The zero value is not usable; call Get.
type Logger struct {
	category Category
	s        *zap.SugaredLogger
}

var (
	mu       sync.RWMutex
	base     = zap.NewNop()
	settings Settings
	loggers  = make(map[Category]*Logger)
)

// Build returns a root logger for s, starting from zap's production config.
// verbose forces debug level.
func Build(s Settings, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if s.Level != "" {
		lvl, err := zapcore.ParseLevel(s.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", s.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	switch s.Format {
	case "", "json":
	case "console", "text":
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: json, console)", s.Format)
	}

	if s.File != "" {
		cfg.OutputPaths = []string{s.File}
	}
	return cfg.Build()
}

// Initialize installs l as the root of every category logger.
func Initialize(l *zap.Logger, s Settings) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = l
	settings = s
	loggers = make(map[Category]*Logger)
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if !settings.DebugMode {
		return false
	}
	if settings.Categories == nil {
		return true
	}
	enabled, exists := settings.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	z := zap.NewNop()
	if categoryEnabled(category) {
		z = base.Named(string(category))
	}
	l := &Logger{category: category, s: z.Sugar()}
	loggers[category] = l
	return l
}

// Sync flushes the root logger.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return base.Sync()
}

func (l *Logger) Debug(format string, args ...any) { l.s.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.s.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...any) { l.s.Errorf(format, args...) }

// With returns a logger carrying the given key-value pairs on every entry.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{category: l.category, s: l.s.With(kv...)}
}

// Timer measures an operation and logs its duration on Stop.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).With("elapsed", elapsed).Debug("%s completed", t.op)
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	l := Get(t.category).With("elapsed", elapsed)
	if elapsed > threshold {
		l.Warn("%s took longer than %v", t.op, threshold)
	} else {
		l.Debug("%s completed", t.op)
	}
	return elapsed
}

package lotofacil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

// SlogLogger implements Logger over log/slog with a tint console handler
type SlogLogger struct {
	l *slog.Logger
}

// SlogOptions configures NewSlogLogger
type SlogOptions struct {
	Level   string    // debug | info | warn | error
	Output  io.Writer // defaults to os.Stderr
	NoColor bool
}

// NewSlogLogger creates a human-readable console logger
func NewSlogLogger(opts SlogOptions) *SlogLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handler := tint.NewHandler(out, &tint.Options{
		Level:      ParseLogLevel(opts.Level),
		TimeFormat: time.DateTime,
		NoColor:    opts.NoColor,
	})
	return &SlogLogger{l: slog.New(handler)}
}

// ParseLogLevel maps a level name to slog, unknown names mean info
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Info logs an info message
func (s *SlogLogger) Info(msg string, args ...any) { s.l.Info(fmt.Sprintf(msg, args...)) }

// Error logs an error message
func (s *SlogLogger) Error(msg string, args ...any) { s.l.Error(fmt.Sprintf(msg, args...)) }

// Debug logs a debug message
func (s *SlogLogger) Debug(msg string, args ...any) { s.l.Debug(fmt.Sprintf(msg, args...)) }

// ZapLogger adapts a zap logger to Logger, used for JSON output
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps l; a nil logger yields zap.NewNop
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{s: l.Sugar()}
}

// Info logs an info message
func (z *ZapLogger) Info(msg string, args ...any) { z.s.Infof(msg, args...) }

// Error logs an error message
func (z *ZapLogger) Error(msg string, args ...any) { z.s.Errorf(msg, args...) }

// Debug logs a debug message
func (z *ZapLogger) Debug(msg string, args ...any) { z.s.Debugf(msg, args...) }

// NewZapProduction builds the JSON zap logger for the given level
func NewZapProduction(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = lvl
	return cfg.Build()
}

// NewLogger builds the Logger described by cfg: "json" selects zap, anything else tint
func NewLogger(cfg *LogConfig) (Logger, error) {
	if cfg == nil {
		cfg = DefaultLogConfig()
	}
	if strings.EqualFold(cfg.Format, "json") {
		zl, err := NewZapProduction(cfg.Level)
		if err != nil {
			return nil, ErrConfigInvalid.WithDetails("log").WithCause(err)
		}
		return NewZapLogger(zl), nil
	}
	return NewSlogLogger(SlogOptions{Level: cfg.Level, NoColor: cfg.NoColor}), nil
}

// SilentLogger implements Logger interface but does not output any logs
// This is useful for testing environments where log output is not desired
type SilentLogger struct{}

// NewSilentLogger creates a new silent logger instance
func NewSilentLogger() *SilentLogger { return &SilentLogger{} }

// Info does nothing (silent)
func (l *SilentLogger) Info(msg string, args ...any) {}

// Error does nothing (silent)
func (l *SilentLogger) Error(msg string, args ...any) {}

// Debug does nothing (silent)
func (l *SilentLogger) Debug(msg string, args ...any) {}

// Package logging provides component-scoped structured logging on top of
// log/slog.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is the minimum severity a Logger emits.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel parses a level name. Unknown names map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevel reports whether s names a level.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum level to output.
	Level Level
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
	// Prefix is attached to every record as the "app" attribute.
	Prefix string
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Output: os.Stderr,
		Prefix: "keyfmt",
	}
}

// Logger is a thin wrapper that keeps component loggers cheap to derive.
type Logger struct {
	sl *slog.Logger
}

// New creates a logger with the given configuration.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		h = slog.NewTextHandler(cfg.Output, opts)
	}

	sl := slog.New(h)
	if cfg.Prefix != "" {
		sl = sl.With("app", cfg.Prefix)
	}
	return &Logger{sl: sl}
}

// FromSlog wraps an existing slog.Logger.
func FromSlog(sl *slog.Logger) *Logger {
	return &Logger{sl: sl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sl: slog.New(discardHandler{})}
}

// With returns a logger with the given key/value pairs attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.slog().With(args...)}
}

// WithComponent returns a logger with the component attribute set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.With("component", component)
}

// Slog exposes the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog()
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog().Debug(msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.slog().Info(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog().Warn(msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.slog().Error(msg, args...)
}

// Enabled reports whether records at level are emitted.
func (l *Logger) Enabled(level Level) bool {
	return l.slog().Enabled(context.Background(), level)
}

// slog tolerates a nil receiver so zero-value holders can log safely.
func (l *Logger) slog() *slog.Logger {
	if l == nil || l.sl == nil {
		return slog.New(discardHandler{})
	}
	return l.sl
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

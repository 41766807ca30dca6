// Package observability provides structured logging, metrics and health
// checks for quadra.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogFormat specifies the output format for logs.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogLevel represents logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogConfig configures the logger.
type LogConfig struct {
	Level     LogLevel
	Format    LogFormat
	Output    io.Writer // defaults to os.Stderr
	AddSource bool
	// Service and Version are attached to every record when set.
	Service string
	Version string
}

// DefaultLogConfig returns the development defaults.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:   LogLevelInfo,
		Format:  LogFormatText,
		Output:  os.Stderr,
		Service: "quadra",
		Version: "dev",
	}
}

// ProductionLogConfig returns JSON logging to stdout.
func ProductionLogConfig() LogConfig {
	return LogConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatJSON,
		Output:    os.Stdout,
		AddSource: true,
		Service:   "quadra",
		Version:   "unknown",
	}
}

// NewLogger creates a structured logger. The returned logger always adds
// correlation and request ids found in the context.
func NewLogger(cfg LogConfig) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     parseSlogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	default:
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	var attrs []slog.Attr
	if cfg.Service != "" {
		attrs = append(attrs, slog.String("service", cfg.Service))
	}
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}

	return slog.New(&contextHandler{handler: handler, attrs: attrs})
}

// LoggerFromEnv builds a logger from APP_ENV, LOG_LEVEL, LOG_FORMAT and
// QUADRA_VERSION. Production defaults to JSON.
func LoggerFromEnv() *slog.Logger {
	cfg := DefaultLogConfig()
	if os.Getenv("APP_ENV") == "production" {
		cfg = ProductionLogConfig()
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = LogLevel(strings.ToLower(level))
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = LogFormat(strings.ToLower(format))
	}
	if version := os.Getenv("QUADRA_VERSION"); version != "" {
		cfg.Version = version
	}
	return NewLogger(cfg)
}

func parseSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type contextHandler struct {
	handler slog.Handler
	attrs   []slog.Attr
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(h.attrs...)
	if id := CorrelationIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String(CorrelationIDKey, id))
	}
	if id := RequestIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String(RequestIDKey, id))
	}
	if id := UserIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String(UserIDKey, id))
	}
	return h.handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{handler: h.handler.WithAttrs(attrs), attrs: h.attrs}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{handler: h.handler.WithGroup(name), attrs: h.attrs}
}

// DiscardLogger returns a logger that writes nowhere, for tests.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

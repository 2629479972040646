// Package logging provides structured logging for the nmon report tool.
//
// This package wraps the standard library's log/slog package to provide
// consistent logging across all components. It supports both text and JSON
// output formats, configurable log levels, and component-based loggers.
//
// Usage:
//
//	// Initialize at startup
//	logging.Init(slog.LevelInfo, false) // Text format
//	logging.Init(slog.LevelDebug, true) // JSON format for pipelines
//
//	// Get a component logger
//	log := logging.Component("batch")
//	log.Info("batch started", "hosts", 12)
//
//	// Log with context
//	log.Error("host failed", "error", err, "host", host)
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/term"
)

// Logger is the global logger instance.
//
// Loggers derived from it, including package-level component loggers
// created before Init, follow the handler installed by the latest Init.
var Logger *slog.Logger

var current atomic.Pointer[slog.Handler]

// Init initializes the global logger with the specified level and format.
// If jsonFormat is true, logs are output as JSON; otherwise, human-readable text.
func Init(level slog.Level, jsonFormat bool) {
	InitWriter(os.Stderr, level, jsonFormat)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level slog.Level, jsonFormat bool) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	InitWithHandler(handler)
}

// InitWithHandler initializes the global logger with a custom handler.
// This is useful for testing or custom output destinations.
func InitWithHandler(handler slog.Handler) {
	current.Store(&handler)
	if Logger == nil {
		Logger = slog.New(&swapHandler{})
		slog.SetDefault(Logger)
	}
}

// swapHandler replays its attributes and groups on the current handler.
type swapHandler struct {
	ops []func(slog.Handler) slog.Handler
}

func (h *swapHandler) resolve() slog.Handler {
	base := *current.Load()
	for _, op := range h.ops {
		base = op(base)
	}
	return base
}

func (h *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*current.Load()).Enabled(ctx, level)
}

func (h *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.resolve().Handle(ctx, r)
}

func (h *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(base slog.Handler) slog.Handler { return base.WithAttrs(attrs) })
}

func (h *swapHandler) WithGroup(name string) slog.Handler {
	return h.with(func(base slog.Handler) slog.Handler { return base.WithGroup(name) })
}

func (h *swapHandler) with(op func(slog.Handler) slog.Handler) slog.Handler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &swapHandler{ops: append(ops, op)}
}

// Setup initializes the global logger from configuration strings.
//
// Format "json" and "text" are explicit; "auto" (or empty) picks text when
// stderr is a terminal and JSON otherwise.
func Setup(level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var jsonFormat bool
	switch strings.ToLower(format) {
	case "json":
		jsonFormat = true
	case "text":
		jsonFormat = false
	case "auto", "":
		jsonFormat = !term.IsTerminal(int(os.Stderr.Fd()))
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}

	Init(lvl, jsonFormat)
	return nil
}

// ParseLevel parses a level name (debug, info, warn, error).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// With returns a new logger with additional attributes.
// These attributes are included in every log entry from the returned logger.
func With(args ...any) *slog.Logger {
	if Logger == nil {
		Init(slog.LevelInfo, false)
	}
	return Logger.With(args...)
}

// Component returns a logger for a specific component.
// The component name is added as an attribute to all log entries.
//
// Example:
//
//	log := logging.Component("nmon")
//	log.Info("file parsed") // Output: time=... level=INFO component=nmon msg="file parsed"
func Component(name string) *slog.Logger {
	if Logger == nil {
		Init(slog.LevelInfo, false)
	}
	return Logger.With("component", name)
}

// WithContext returns a logger that includes context values.
func WithContext(ctx context.Context) *slog.Logger {
	if Logger == nil {
		Init(slog.LevelInfo, false)
	}

	logger := Logger

	if host, ok := ctx.Value(contextKeyHost).(string); ok {
		logger = logger.With("host", host)
	}
	if file, ok := ctx.Value(contextKeyFile).(string); ok {
		logger = logger.With("file", file)
	}

	return logger
}

// Context key types for type-safe context value extraction.
type contextKey int

const (
	contextKeyHost contextKey = iota
	contextKeyFile
)

// ContextWithHost adds a host name to the context for logging.
func ContextWithHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, contextKeyHost, host)
}

// ContextWithFile adds an input file path to the context for logging.
func ContextWithFile(ctx context.Context, file string) context.Context {
	return context.WithValue(ctx, contextKeyFile, file)
}

// =============================================================================
// Convenience Functions
// =============================================================================

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	if Logger == nil {
		Init(slog.LevelInfo, false)
	}
	Logger.Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	if Logger == nil {
		Init(slog.LevelInfo, false)
	}
	Logger.Info(msg, args...)
}

// Warn logs at warning level.
func Warn(msg string, args ...any) {
	if Logger == nil {
		Init(slog.LevelInfo, false)
	}
	Logger.Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	if Logger == nil {
		Init(slog.LevelInfo, false)
	}
	Logger.Error(msg, args...)
}

// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer KernelLogger with contextual
// helpers (operator, dispatch key, component) and helpers for kernel calls,
// registrations and deferred construction.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a case-insensitive level name to a LogLevel.
// "warning" is accepted as an alias for warn.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger defines the minimal logging interface used by the dispatcher.
// Users can provide their own implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// KernelLogger wraps slog.Logger adding contextual cloning helpers and
// kernel specific convenience methods. It is cheap to copy via With* methods.
type KernelLogger struct {
	logger      *slog.Logger
	level       LogLevel
	context     map[string]any
	component   string
	operator    string
	dispatchKey string
}

// LoggerConfig configures construction of a KernelLogger.
type LoggerConfig struct {
	Level       LogLevel
	Format      string // json or text
	Output      io.Writer
	AddSource   bool
	Component   string
	CustomAttrs map[string]any
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout, CustomAttrs: map[string]any{}}
}

// NewLogger builds a KernelLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *KernelLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	ctx := make(map[string]any, len(cfg.CustomAttrs))
	for k, v := range cfg.CustomAttrs {
		ctx[k] = v
	}
	return &KernelLogger{logger: slog.New(handler), level: cfg.Level, context: ctx, component: cfg.Component}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *KernelLogger) clone() *KernelLogger {
	nl := *l
	nl.context = make(map[string]any, len(l.context))
	for k, v := range l.context {
		nl.context[k] = v
	}
	return &nl
}

// WithContext adds a key/value attribute that will be attached to every log entry.
func (l *KernelLogger) WithContext(key string, value any) *KernelLogger {
	nl := l.clone()
	nl.context[key] = value
	return nl
}

// WithComponent sets the logical component (registry, warmup, ...).
func (l *KernelLogger) WithComponent(c string) *KernelLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithOperator attaches the operator name.
func (l *KernelLogger) WithOperator(op string) *KernelLogger {
	nl := l.clone()
	nl.operator = op
	return nl
}

// WithDispatchKey attaches the dispatch key.
func (l *KernelLogger) WithDispatchKey(key string) *KernelLogger {
	nl := l.clone()
	nl.dispatchKey = key
	return nl
}

func (l *KernelLogger) buildAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(l.context)+3)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if l.operator != "" {
		attrs = append(attrs, slog.String("operator", l.operator))
	}
	if l.dispatchKey != "" {
		attrs = append(attrs, slog.String("dispatch_key", l.dispatchKey))
	}
	for k, v := range l.context {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// log treats args as slog key/value pairs, the same way SlogAdapter does.
func (l *KernelLogger) log(level slog.Level, allowed bool, msg string, args ...any) {
	if !allowed {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.AddAttrs(l.buildAttrs()...)
	r.Add(args...)
	_ = l.logger.Handler().Handle(context.Background(), r)
}

// Debug logs at debug level.
func (l *KernelLogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, msg, args...)
}

// Info logs at info level.
func (l *KernelLogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, l.level <= LogLevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *KernelLogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, l.level <= LogLevelWarn, msg, args...)
}

// Error logs at error level.
func (l *KernelLogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, l.level <= LogLevelError, msg, args...)
}

// stackTracer is implemented by errors that captured the stack they were
// raised on, such as a recovered kernel panic.
type stackTracer interface {
	StackTrace() []byte
}

// ErrorWithStack logs an error plus a stack trace. The trace carried by err
// (or an error it wraps) is preferred over a snapshot of the caller's stack.
func (l *KernelLogger) ErrorWithStack(err error, msg string) {
	if l.level > LogLevelError {
		return
	}
	attrs := l.buildAttrs()
	attrs = append(attrs, slog.String("error", err.Error()), slog.String("error_type", fmt.Sprintf("%T", err)))
	var st stackTracer
	if errors.As(err, &st) && len(st.StackTrace()) > 0 {
		attrs = append(attrs, slog.String("stack_trace", string(st.StackTrace())))
	} else {
		stack := make([]byte, 4096)
		n := runtime.Stack(stack, false)
		attrs = append(attrs, slog.String("stack_trace", string(stack[:n])))
	}
	l.logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

// LogKernelCall records a kernel invocation through one calling convention.
func (l *KernelLogger) LogKernelCall(convention string, dur time.Duration, err error) {
	attrs := l.buildAttrs()
	attrs = append(attrs, slog.String("convention", convention), slog.Duration("duration", dur), slog.Bool("success", err == nil))
	level := slog.LevelDebug
	msg := "Kernel call completed"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelError
		msg = "Kernel call failed"
	}
	if l.level > levelOf(level) {
		return
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogRegistration records a kernel registration or its release.
func (l *KernelLogger) LogRegistration(id string, handle fmt.Stringer, released bool) {
	if l.level > LogLevelInfo {
		return
	}
	attrs := l.buildAttrs()
	attrs = append(attrs, slog.String("registration_id", id), slog.String("handle", handle.String()))
	msg := "Kernel registered"
	if released {
		msg = "Kernel registration released"
	}
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs...)
}

// LogMaterialization records the outcome of running a deferred constructor.
func (l *KernelLogger) LogMaterialization(dur time.Duration, err error) {
	attrs := l.buildAttrs()
	attrs = append(attrs, slog.Duration("duration", dur), slog.Bool("success", err == nil))
	level := slog.LevelDebug
	msg := "Kernel materialized"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelError
		msg = "Kernel materialization failed"
	}
	if l.level > levelOf(level) {
		return
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *KernelLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Debug("Operation completed", "operation", op, "duration", time.Since(start)) }
}

func levelOf(s slog.Level) LogLevel {
	switch {
	case s >= slog.LevelError:
		return LogLevelError
	case s >= slog.LevelWarn:
		return LogLevelWarn
	case s >= slog.LevelInfo:
		return LogLevelInfo
	default:
		return LogLevelDebug
	}
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// NewSlogLogger creates a new KernelLogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *KernelLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

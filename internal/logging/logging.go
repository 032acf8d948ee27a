// Package logging provides structured logging for the service layer,
// backed by zerolog. Log entries carry trace and user identifiers taken
// from the request context so a single staff action can be followed
// across middleware, domain services, and the Supabase transport.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// TraceIDKey is the context key for the request trace ID.
	TraceIDKey contextKey = "trace_id"
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// RoleKey is the context key for the authenticated user role.
	RoleKey contextKey = "role"
)

// Logger wraps a zerolog.Logger with context helpers.
type Logger struct {
	zl zerolog.Logger
}

// Config holds logger configuration.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Pretty enables human-readable console output.
	Pretty bool
	// Output overrides the destination (defaults to stderr).
	Output io.Writer
}

// New creates a logger for the named component.
func New(component string, cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && cfg.Level != "" {
		level = parsed
	}

	zl := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("component", component).
		Logger()
	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithContext returns a logger annotated with trace/user/role from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	if id := GetTraceID(ctx); id != "" {
		zc = zc.Str("trace_id", id)
	}
	if id, ok := ctx.Value(UserIDKey).(string); ok && id != "" {
		zc = zc.Str("user_id", id)
	}
	if role, ok := ctx.Value(RoleKey).(string); ok && role != "" {
		zc = zc.Str("role", role)
	}
	return &Logger{zl: zc.Logger()}
}

// WithError returns a logger annotated with err.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

// WithFields returns a logger annotated with the given fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string) { l.zl.Debug().Msg(msg) }

// Info logs at info level.
func (l *Logger) Info(msg string) { l.zl.Info().Msg(msg) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string) { l.zl.Warn().Msg(msg) }

// Error logs at error level.
func (l *Logger) Error(msg string) { l.zl.Error().Msg(msg) }

// LogRequest logs one HTTP request with its outcome.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	evt := l.WithContext(ctx).zl.Info()
	if status >= 500 {
		evt = l.WithContext(ctx).zl.Error()
	}
	evt.Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration", duration).
		Msg("http request")
}

// LogSecurityEvent logs an auth or rate-limit related event.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, fields map[string]any) {
	l.WithContext(ctx).zl.Warn().Fields(fields).Str("event", event).Msg("security event")
}

// NewTraceID generates a fresh trace ID.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID stores a trace ID on the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace ID from the context, or "".
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}

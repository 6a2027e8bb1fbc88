// Package observability provides structured logging for tabcanvas.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/m-mizutani/masq"

	"github.com/jmylchreest/tabcanvas/internal/config"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	loggerKey contextKey = "logger"
)

// LevelTrace sits below debug for per-request provider chatter.
const LevelTrace = slog.Level(-8)

// RedactedValue replaces any masked attribute value.
const RedactedValue = "[REDACTED]"

// clientIDPattern matches Unsplash style "Client-ID <key>" authorization values.
var clientIDPattern = regexp.MustCompile(`Client-ID\s+\S+`)

// urlSecretPattern matches credential query parameters inside logged URLs.
var urlSecretPattern = regexp.MustCompile(
	`(?i)([?&](?:password|token|apikey|api_key|secret|credential|client_id|access_key)=)[^&\s"]*`,
)

// sensitiveKeys are attribute names whose values never reach the log output.
var sensitiveKeys = []string{
	"password", "Password",
	"secret", "Secret",
	"token", "Token",
	"apikey", "ApiKey", "api_key", "APIKey",
	"credential", "Credential",
	"access_key", "AccessKey",
	"authorization", "Authorization",
	"client_id",
}

// NewLoggerWithWriter creates a new slog.Logger that writes to the provided writer.
// Credentials are masked before they reach the handler.
func NewLoggerWithWriter(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)

	redact := newRedactor()
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 {
				switch a.Key {
				case slog.TimeKey:
					if t, ok := a.Value.Any().(time.Time); ok && cfg.TimeFormat != "" {
						return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
					}
					return a
				case slog.LevelKey:
					if lvl, ok := a.Value.Any().(slog.Level); ok && lvl <= LevelTrace {
						return slog.String(slog.LevelKey, "TRACE")
					}
					return a
				case slog.SourceKey:
					if src, ok := a.Value.Any().(*slog.Source); ok {
						return slog.String("logpos", fmt.Sprintf("%s:%d", trimSourcePath(src.File), src.Line))
					}
					return a
				case slog.MessageKey:
					return a
				}
			}
			if a.Value.Kind() == slog.KindString {
				a.Value = slog.StringValue(urlSecretPattern.ReplaceAllString(a.Value.String(), "${1}"+RedactedValue))
			}
			return redact(groups, a)
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

func newRedactor() func(groups []string, a slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, len(sensitiveKeys)+2)
	opts = append(opts, masq.WithRedactMessage(RedactedValue))
	for _, key := range sensitiveKeys {
		opts = append(opts, masq.WithFieldName(key))
	}
	opts = append(opts, masq.WithRegex(clientIDPattern))
	return masq.New(opts...)
}

// trimSourcePath shortens an absolute source path to its module-relative form.
func trimSourcePath(file string) string {
	for _, root := range []string{"/internal/", "/pkg/", "/cmd/"} {
		if i := strings.LastIndex(file, root); i >= 0 {
			return file[i+1:]
		}
	}
	return filepath.Base(file)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch level {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds a request ID to the logger.
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(slog.String("request_id", requestID))
}

// WithComponent adds a component name to the logger.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}

// WithOperation adds an operation name to the logger.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String("operation", operation))
}

// WithSource tags the logger with an image source key.
func WithSource(logger *slog.Logger, source string) *slog.Logger {
	return logger.With(slog.String("source", source))
}

// WithProfile tags the logger with a browser profile name.
func WithProfile(logger *slog.Logger, profile string) *slog.Logger {
	return logger.With(slog.String("profile", profile))
}

// LoggerFromContext extracts a logger from the context.
// If no logger is found, returns the default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// ContextWithLogger adds a logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// RequestIDFromContext extracts a request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// SetDefault sets the provided logger as the default slog logger.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}

// TimedOperation logs the start and end of an operation with duration.
// Returns a function that should be deferred to log the completion.
//
// Usage:
//
//	done := observability.TimedOperation(ctx, logger, "rotate_wallpaper")
//	defer done()
func TimedOperation(ctx context.Context, logger *slog.Logger, operation string) func() {
	start := time.Now()
	logger.InfoContext(ctx, "operation started", slog.String("operation", operation))

	return func() {
		logger.InfoContext(ctx, "operation completed",
			slog.String("operation", operation),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// TimedOperationWithError is like TimedOperation but reads the final error
// through errPtr when the returned function runs.
//
//nolint:gocritic // errPtr must be a pointer to capture errors set after this call
func TimedOperationWithError(ctx context.Context, logger *slog.Logger, operation string, errPtr *error) func() {
	start := time.Now()
	logger.InfoContext(ctx, "operation started", slog.String("operation", operation))

	return func() {
		duration := time.Since(start)
		if errPtr != nil && *errPtr != nil {
			logger.ErrorContext(ctx, "operation failed",
				slog.String("operation", operation),
				slog.Duration("duration", duration),
				slog.String("error", (*errPtr).Error()),
			)
			return
		}
		logger.InfoContext(ctx, "operation completed",
			slog.String("operation", operation),
			slog.Duration("duration", duration),
		)
	}
}

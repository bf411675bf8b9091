package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type ctxKey struct{}

// NewContext returns a copy of ctx that carries logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request's logger, or one over the slog default
// tagged "unknown" when none was attached.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// Middleware attaches logger to every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// RequestIDMiddleware binds the request ID to the context logger, so
// handler logs can be joined with the access log.
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).With(FieldRequestID, extractRequestID(r))
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// StructuredLogger writes the request and ledger events that every
// component logs the same way.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPStart logs an incoming request at debug level.
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP, requestID string) {
	fields := Fields{}.
		Request(r.Method, r.URL.Path, r.URL.RawQuery, requestID, clientIP).
		Add(FieldUserAgent, r.Header.Get("User-Agent"))

	sl.logger.DebugContext(ctx, "HTTP request started", fields...)
}

// LogHTTPEnd logs a finished request: info for success, warn for client
// errors, error for server errors.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, duration time.Duration, clientIP, requestID string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	fields := Fields{}.
		Request(r.Method, r.URL.Path, r.URL.RawQuery, requestID, clientIP).
		Add(FieldStatusCode, statusCode).
		Add(FieldSuccess, statusCode < 400).
		Add(FieldDuration, duration.Milliseconds()).
		Add(FieldDurationHuman, duration.String())

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", sl.logger.stamp(fields)...)
}

// LogLedgerUpdated logs a committed write to a month ledger.
func (sl *StructuredLogger) LogLedgerUpdated(ctx context.Context, op, user, month string, items int, totalPlanned, totalActual float64) {
	fields := Fields{}.
		Add(FieldOperation, op).
		Ledger(user, month).
		Add(FieldItemCount, items).
		Totals(totalPlanned, totalActual)

	sl.logger.InfoContext(ctx, "Ledger updated", fields...)
}

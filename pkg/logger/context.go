package logger

import (
	"context"
	"log/slog"
)

type loggerCtxKey struct{}

// With derives a context whose logger carries the extra fields. Middleware
// uses it to stamp trace and principal ids onto every line logged downstream.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, From(ctx).With(fields...))
}

// From returns the request-scoped logger, or the process logger when the
// context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}

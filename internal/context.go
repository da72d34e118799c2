package internal

import (
	"context"
	"time"
)

// DefaultOpTimeout bounds blocking calls to external systems when the caller
// did not pick a deadline.
const DefaultOpTimeout = 5 * time.Second

// WithTimeout returns a context with the given timeout, falling back to
// DefaultOpTimeout when duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = DefaultOpTimeout
	}
	return context.WithTimeout(ctx, duration)
}

package port

import (
	"context"
	"time"
)

// RateLimitStore records login attempts inside a sliding time window.
// Implementations may be process-local; counters are allowed to reset on
// restart.
type RateLimitStore interface {
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
	ClearAttempts(ctx context.Context, identifier string) error
}

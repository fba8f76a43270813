package ports

import (
	"context"
	"time"
)

// ExpiryScheduler arranges for a pending payment to be cancelled once its TTL passes.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, token string, after time.Duration) error
}

// NoopScheduler leaves expiry to the periodic sweep.
type NoopScheduler struct{}

func (NoopScheduler) ScheduleExpiry(context.Context, string, time.Duration) error { return nil }

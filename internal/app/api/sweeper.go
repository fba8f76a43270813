package api

import (
	"context"
	"log/slog"
	"time"
)

type pendingExpirer interface {
	ExpirePending(ctx context.Context, olderThan time.Duration) (int, error)
}

// sweepInterval keeps the worst-case overrun of a pending payment well under its TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < 10*time.Second {
		return 10 * time.Second
	}
	if interval > 5*time.Minute {
		return 5 * time.Minute
	}
	return interval
}

// runSweeper cancels stale pending payments until ctx ends.
func runSweeper(ctx context.Context, payments pendingExpirer, ttl, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := payments.ExpirePending(ctx, ttl); err != nil && ctx.Err() == nil {
				logger.WarnContext(ctx, "pending payment sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

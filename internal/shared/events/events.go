// Package events is the contract between domain events raised by use cases
// and the brokers that carry them.
package events

import (
	"context"
	"log/slog"
	"time"
)

// Event is implemented by every domain event that leaves the process.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() string
}

// Publisher delivers events after the owning transaction committed.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event.
var NoopPublisher Publisher = noopPublisher{}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

// BestEffort wraps p so that delivery failures are logged instead of returned.
// Use cases publish after commit and must not fail because a broker is down.
func BestEffort(p Publisher, logger *slog.Logger) Publisher {
	if p == nil {
		p = NoopPublisher
	}
	if logger == nil {
		logger = slog.Default()
	}
	return bestEffort{inner: p, logger: logger}
}

type bestEffort struct {
	inner  Publisher
	logger *slog.Logger
}

func (b bestEffort) Publish(ctx context.Context, event Event) error {
	if err := b.inner.Publish(ctx, event); err != nil {
		b.logger.WarnContext(ctx, "event publish failed",
			slog.String("event", event.EventName()),
			slog.String("aggregate_id", event.AggregateID()),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

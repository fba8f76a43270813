package events

import (
	"context"
	"log/slog"

	sharedevents "github.com/Apurer/pet-adoption-api/internal/shared/events"
)

// LogPublisher writes each envelope as a structured log line.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event sharedevents.Event) error {
	env, err := Wrap(event)
	if err != nil {
		return err
	}
	p.logger.LogAttrs(ctx, slog.LevelInfo, "domain event",
		slog.String("event_id", env.EventID),
		slog.String("type", env.Type),
		slog.String("aggregate_id", env.AggregateID),
		slog.Time("occurred_at", env.OccurredAt),
		slog.String("payload", string(env.Payload)),
	)
	return nil
}

var _ sharedevents.Publisher = (*LogPublisher)(nil)

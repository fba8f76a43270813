package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sampleEvent struct{}

func (sampleEvent) EventName() string     { return "sample.happened" }
func (sampleEvent) OccurredAt() time.Time { return time.Unix(0, 0) }
func (sampleEvent) AggregateID() string   { return "agg-1" }

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, Event) error { return errors.New("broker down") }

func TestBestEffort_LogsAndSwallowsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := BestEffort(failingPublisher{}, logger).Publish(context.Background(), sampleEvent{})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "broker down")
	assert.Contains(t, buf.String(), "sample.happened")
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher.Publish(context.Background(), sampleEvent{}))
}

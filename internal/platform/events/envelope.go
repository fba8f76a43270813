// Package events carries domain events to external brokers.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedevents "github.com/Apurer/pet-adoption-api/internal/shared/events"
)

// Envelope is the wire form shared by every broker.
type Envelope struct {
	EventID     string          `json:"event_id"`
	Type        string          `json:"type"`
	OccurredAt  time.Time       `json:"occurred_at"`
	AggregateID string          `json:"aggregate_id"`
	Payload     json.RawMessage `json:"payload"`
}

// Wrap marshals event into a fresh envelope.
func Wrap(event sharedevents.Event) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", event.EventName(), err)
	}
	return Envelope{
		EventID:     uuid.NewString(),
		Type:        event.EventName(),
		OccurredAt:  event.OccurredAt().UTC(),
		AggregateID: event.AggregateID(),
		Payload:     payload,
	}, nil
}

func encode(event sharedevents.Event) (Envelope, []byte, error) {
	env, err := Wrap(event)
	if err != nil {
		return Envelope{}, nil, err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return env, body, nil
}

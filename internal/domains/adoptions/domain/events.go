package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdoptionCompleted is raised after the adoption commit.
type AdoptionCompleted struct {
	AdoptionID string
	PetID      string
	AdopterID  string
	ActorID    string
	Fee        decimal.Decimal
	Timestamp  time.Time
}

func (e AdoptionCompleted) EventName() string     { return "adoptions.adoption.completed" }
func (e AdoptionCompleted) OccurredAt() time.Time { return e.Timestamp }
func (e AdoptionCompleted) AggregateID() string   { return e.AdoptionID }

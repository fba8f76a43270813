package domain

import "time"

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// PetListed is raised when an owner creates a listing.
type PetListed struct {
	BaseEvent
	PetID   string
	OwnerID string
	Name    string
}

func (e PetListed) EventName() string   { return "pets.pet.listed" }
func (e PetListed) AggregateID() string { return e.PetID }

// PetStatusChanged is raised when a manual status change is applied.
type PetStatusChanged struct {
	BaseEvent
	PetID      string
	FromStatus Status
	ToStatus   Status
}

func (e PetStatusChanged) EventName() string   { return "pets.pet.status_changed" }
func (e PetStatusChanged) AggregateID() string { return e.PetID }

// PetDeleted is raised when a listing is removed.
type PetDeleted struct {
	BaseEvent
	PetID string
}

func (e PetDeleted) EventName() string   { return "pets.pet.deleted" }
func (e PetDeleted) AggregateID() string { return e.PetID }

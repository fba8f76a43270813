package types

import "time"

// AdoptInput asks to adopt a pet. AdopterID differs from ActorID only when
// staff adopt on behalf of someone; the transport checks that capability.
type AdoptInput struct {
	PetID     string
	ActorID   string
	AdopterID string
}

// ListQuery carries history filters from the transport.
type ListQuery struct {
	AdoptedBy  string
	DateAfter  *time.Time
	DateBefore *time.Time
	Ordering   string
	Page       int
	PageSize   int
}

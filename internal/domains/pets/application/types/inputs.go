package types

import "github.com/shopspring/decimal"

// Actor is the caller as seen by the pets use cases. Moderator is resolved
// from the caller's capabilities at the transport boundary.
type Actor struct {
	UserID    string
	Moderator bool
}

// PetInput carries create and partial-update payloads; nil fields are left untouched.
type PetInput struct {
	Name        *string
	Description *string
	Breed       *string
	Age         *int
	CategoryID  *string
	Fee         *decimal.Decimal
	Status      *string
	Visibility  *string
	PhotoURLs   *[]string
}

// ListQuery carries catalog filters as received from the transport.
type ListQuery struct {
	Name       string
	CategoryID string
	FeeLT      *decimal.Decimal
	FeeGT      *decimal.Decimal
	Search     string
	Ordering   string
	Page       int
	PageSize   int
}

// CategoryInput carries category writes.
type CategoryInput struct {
	Name        *string
	Description *string
}

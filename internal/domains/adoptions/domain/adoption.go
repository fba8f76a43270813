package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyPet     = errors.New("adoption must reference a pet")
	ErrEmptyAdopter = errors.New("adoption must reference an adopter")
)

// Adoption records that a user adopted a pet. It is created once and never changes.
type Adoption struct {
	ID        string
	PetID     string
	AdoptedBy string
	Fee       decimal.Decimal
	Date      time.Time
}

func NewAdoption(id, petID, adopterID string, fee decimal.Decimal, at time.Time) (*Adoption, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, ErrEmptyPet
	}
	if strings.TrimSpace(adopterID) == "" {
		return nil, ErrEmptyAdopter
	}
	return &Adoption{ID: id, PetID: petID, AdoptedBy: adopterID, Fee: fee, Date: at.UTC()}, nil
}

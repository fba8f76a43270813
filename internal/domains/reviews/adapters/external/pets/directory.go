// Package pets answers pet existence questions for the reviews context
// using the pets repository port.
package pets

import (
	"context"
	"errors"

	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/ports"
)

var _ ports.PetDirectory = (*Directory)(nil)

type Directory struct {
	pets petports.Repository
}

func NewDirectory(pets petports.Repository) *Directory {
	return &Directory{pets: pets}
}

func (d *Directory) PetExists(ctx context.Context, petID string) error {
	if _, err := d.pets.GetByID(ctx, petID); err != nil {
		if errors.Is(err, petports.ErrNotFound) {
			return ports.ErrPetNotFound
		}
		return err
	}
	return nil
}

package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/ports"
)

var (
	ErrInvalidInput = errors.New("invalid review input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("review conflict")
	ErrForbidden    = errors.New("review action forbidden")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyComments),
		errors.Is(err, domain.ErrEmptyPet),
		errors.Is(err, domain.ErrEmptyReviewer):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, ports.ErrPetNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrAlreadyReviewed):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

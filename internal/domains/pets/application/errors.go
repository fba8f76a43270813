package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid pet input")
	// ErrNotFound covers missing pets and categories, and pets hidden from the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a state conflict such as editing an adopted pet.
	ErrConflict = errors.New("pet conflict")
	// ErrForbidden signals the caller may not perform the change.
	ErrForbidden = errors.New("pet action forbidden")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrNegativeFee),
		errors.Is(err, domain.ErrFeePrecision),
		errors.Is(err, domain.ErrNegativeAge),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidVisibility),
		errors.Is(err, domain.ErrEmptyOwner),
		errors.Is(err, domain.ErrEmptyCategoryName):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, ports.ErrCategoryNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, domain.ErrAlreadyAdopted),
		errors.Is(err, domain.ErrNotAdoptable),
		errors.Is(err, ports.ErrCategoryNameTaken):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, domain.ErrStatusNotAllowed):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return err
}

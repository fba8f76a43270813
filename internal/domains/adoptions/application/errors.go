package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	ledgerports "github.com/Apurer/pet-adoption-api/internal/domains/ledger/ports"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

var (
	ErrInvalidInput = errors.New("invalid adoption input")
	// ErrNotFound covers a missing pet, adopter, or adoption record.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the pet cannot be adopted in its current state.
	ErrConflict          = errors.New("adoption conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyPet), errors.Is(err, domain.ErrEmptyAdopter):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrNotFound),
		errors.Is(err, ledgerports.ErrPetNotFound),
		errors.Is(err, ledgerports.ErrUserNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, petdomain.ErrAlreadyAdopted), errors.Is(err, petdomain.ErrNotAdoptable),
		errors.Is(err, ledgerports.ErrRowChanged):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, ledgerports.ErrInsufficientFunds):
		return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	}
	return err
}

package application

import (
	"errors"
	"fmt"

	ledgerports "github.com/Apurer/pet-adoption-api/internal/domains/ledger/ports"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
)

var (
	ErrInvalidInput = errors.New("invalid payment input")
	ErrNotFound     = errors.New("not found")
	// ErrConflict covers idempotency key reuse with another amount.
	ErrConflict = errors.New("payment conflict")
	// ErrGateway means the gateway failed, timed out, or refused; no payment row exists.
	ErrGateway   = errors.New("payment gateway error")
	ErrForbidden = errors.New("payment access forbidden")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountPrecision),
		errors.Is(err, domain.ErrUnknownOutcome),
		errors.Is(err, domain.ErrEmptyUser),
		errors.Is(err, domain.ErrEmptyToken):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrNotFound),
		errors.Is(err, ports.ErrCustomerNotFound),
		errors.Is(err, ledgerports.ErrPaymentNotFound),
		errors.Is(err, ledgerports.ErrUserNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

// gatewayError keeps the gateway's reason reachable through errors.Is(err, ErrGateway).
func gatewayError(err error) error {
	return fmt.Errorf("%w: %w", ErrGateway, err)
}

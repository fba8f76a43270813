// Package ports defines the atomic boundary used by every workflow that
// moves money or changes a pet's adoption state.
package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	paymentdomain "github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

var (
	// ErrTxClosed is returned by any Tx method called after Do returned.
	ErrTxClosed          = errors.New("ledger transaction already closed")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrUserNotFound      = errors.New("user not found")
	ErrPetNotFound       = errors.New("pet not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	// ErrPaymentFinalized is returned when FinalizePayment finds the row no longer pending.
	ErrPaymentFinalized = errors.New("payment already finalized")
	ErrInvalidAmount    = errors.New("ledger amount must be positive")
	// ErrRowChanged means a row read inside the unit changed before commit; nothing was applied.
	ErrRowChanged = errors.New("row changed before the unit committed")
)

// Tx is the set of ledger primitives available inside one atomic unit.
// Reads through Lock* hold the row until the unit ends.
type Tx interface {
	LockPet(ctx context.Context, petID string) (*petdomain.Pet, error)
	LockUser(ctx context.Context, userID string) (*userdomain.User, error)
	LockPaymentByToken(ctx context.Context, token string) (*paymentdomain.Transaction, error)
	// DebitUser fails with ErrInsufficientFunds instead of going negative.
	DebitUser(ctx context.Context, userID string, amount decimal.Decimal) error
	CreditUser(ctx context.Context, userID string, amount decimal.Decimal) error
	SetPetStatus(ctx context.Context, petID string, status petdomain.Status, adopterID string) error
	RecordAdoption(ctx context.Context, adoption *adoptiondomain.Adoption) error
	RecordPayment(ctx context.Context, payment *paymentdomain.Transaction) error
	// FinalizePayment moves a pending payment to status and fails with ErrPaymentFinalized otherwise.
	FinalizePayment(ctx context.Context, token string, status paymentdomain.Status, method string) error
}

// UnitOfWork runs fn atomically: every write made through the Tx commits together
// when fn returns nil and none of them is visible when it returns an error.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

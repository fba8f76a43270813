// Package postgres implements the ledger as one database transaction per unit.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	adoptionpg "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/ledger/ports"
	paymentpg "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/persistence/postgres"
	paymentdomain "github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	paymentports "github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	petpg "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	userpg "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork opens a gorm transaction per Do and hands fn repositories bound to it.
// Row locks taken through Lock* are SELECT ... FOR UPDATE.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if u == nil || u.db == nil {
		return errors.New("postgres ledger not configured")
	}
	var scoped *gormTx
	defer func() {
		if scoped != nil {
			scoped.closed = true
		}
	}()
	return u.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		scoped = &gormTx{
			users:     userpg.NewRepository(gtx),
			pets:      petpg.NewRepository(gtx),
			payments:  paymentpg.NewRepository(gtx),
			adoptions: adoptionpg.NewRepository(gtx),
		}
		return fn(ctx, scoped)
	})
}

type gormTx struct {
	closed    bool
	users     *userpg.Repository
	pets      *petpg.Repository
	payments  *paymentpg.Repository
	adoptions *adoptionpg.Repository
}

func (t *gormTx) LockPet(ctx context.Context, petID string) (*petdomain.Pet, error) {
	if t.closed {
		return nil, ports.ErrTxClosed
	}
	pet, err := t.pets.GetForUpdate(ctx, petID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return pet, nil
}

func (t *gormTx) LockUser(ctx context.Context, userID string) (*userdomain.User, error) {
	if t.closed {
		return nil, ports.ErrTxClosed
	}
	user, err := t.users.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

func (t *gormTx) LockPaymentByToken(ctx context.Context, token string) (*paymentdomain.Transaction, error) {
	if t.closed {
		return nil, ports.ErrTxClosed
	}
	payment, err := t.payments.GetByTokenForUpdate(ctx, token)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return payment, nil
}

func (t *gormTx) DebitUser(ctx context.Context, userID string, amount decimal.Decimal) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	if !amount.IsPositive() {
		return ports.ErrInvalidAmount
	}
	if _, err := t.users.AddToBalance(ctx, userID, amount.Neg()); err != nil {
		if errors.Is(err, userdomain.ErrInsufficientFunds) {
			return ports.ErrInsufficientFunds
		}
		return mapNotFound(err)
	}
	return nil
}

func (t *gormTx) CreditUser(ctx context.Context, userID string, amount decimal.Decimal) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	if !amount.IsPositive() {
		return ports.ErrInvalidAmount
	}
	if _, err := t.users.AddToBalance(ctx, userID, amount); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func (t *gormTx) SetPetStatus(ctx context.Context, petID string, status petdomain.Status, adopterID string) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	return mapNotFound(t.pets.SetStatus(ctx, petID, status, adopterID))
}

func (t *gormTx) RecordAdoption(ctx context.Context, adoption *adoptiondomain.Adoption) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	if err := t.adoptions.Create(ctx, adoption); err != nil {
		return fmt.Errorf("record adoption: %w", err)
	}
	return nil
}

func (t *gormTx) RecordPayment(ctx context.Context, payment *paymentdomain.Transaction) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	if err := t.payments.Create(ctx, payment); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}

func (t *gormTx) FinalizePayment(ctx context.Context, token string, status paymentdomain.Status, method string) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	if !status.Terminal() {
		return paymentdomain.ErrInvalidTransition
	}
	err := t.payments.Finalize(ctx, token, status, method)
	if errors.Is(err, paymentdomain.ErrAlreadyFinalized) {
		return ports.ErrPaymentFinalized
	}
	return mapNotFound(err)
}

func mapNotFound(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, userports.ErrNotFound):
		return ports.ErrUserNotFound
	case errors.Is(err, petports.ErrNotFound):
		return ports.ErrPetNotFound
	case errors.Is(err, paymentports.ErrNotFound):
		return ports.ErrPaymentNotFound
	default:
		return err
	}
}

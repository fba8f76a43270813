// Package memory implements the ledger over the in-memory repositories.
// One mutex serializes every unit; writes are staged and applied when fn succeeds.
// A unit also holds the pet repository guard, so pet Update and Delete wait for it.
// Commit validates every staged write before applying any of them.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	"github.com/Apurer/pet-adoption-api/internal/domains/ledger/ports"
	paymentmemory "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/memory"
	paymentdomain "github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	paymentports "github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs ledger units against the memory repositories.
type UnitOfWork struct {
	mu        sync.Mutex
	users     *usermemory.Repository
	pets      *petmemory.Repository
	payments  *paymentmemory.Repository
	adoptions *adoptionmemory.Repository
	now       func() time.Time
}

// NewUnitOfWork shares the pet repository guard with every unit it runs.
func NewUnitOfWork(users *usermemory.Repository, pets *petmemory.Repository, payments *paymentmemory.Repository, adoptions *adoptionmemory.Repository) *UnitOfWork {
	return &UnitOfWork{users: users, pets: pets, payments: payments, adoptions: adoptions, now: time.Now}
}

// Do runs fn with staged writes and applies them only if fn and validation succeed.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	guard := u.pets.Guard()
	guard.Lock()
	defer guard.Unlock()

	tx := &stagedTx{
		uow:        u,
		users:      map[string]*userdomain.User{},
		pets:       map[string]*petdomain.Pet{},
		observed:   map[string]petdomain.Status{},
		observedBy: map[string]string{},
		payments:   map[string]*paymentdomain.Transaction{},
		finalized:  map[string]finalization{},
		petChanges: map[string]struct{}{},
		balances:   map[string]struct{}{},
	}
	defer func() { tx.closed = true }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit(ctx)
}

type finalization struct {
	status paymentdomain.Status
	method string
}

type stagedTx struct {
	uow    *UnitOfWork
	closed bool

	users      map[string]*userdomain.User
	pets       map[string]*petdomain.Pet
	observed   map[string]petdomain.Status
	observedBy map[string]string
	payments   map[string]*paymentdomain.Transaction
	finalized  map[string]finalization
	petChanges map[string]struct{}
	balances   map[string]struct{}
	newPays    []*paymentdomain.Transaction
	adoptions  []*adoptiondomain.Adoption
}

func (t *stagedTx) LockPet(ctx context.Context, petID string) (*petdomain.Pet, error) {
	if t.closed {
		return nil, ports.ErrTxClosed
	}
	if pet, ok := t.pets[petID]; ok {
		return pet.Clone(), nil
	}
	proj, err := t.uow.pets.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, petports.ErrNotFound) {
			return nil, ports.ErrPetNotFound
		}
		return nil, err
	}
	t.pets[petID] = proj.Entity
	t.observed[petID] = proj.Entity.Status
	t.observedBy[petID] = proj.Entity.AdoptedBy
	return proj.Entity.Clone(), nil
}

func (t *stagedTx) LockUser(ctx context.Context, userID string) (*userdomain.User, error) {
	if t.closed {
		return nil, ports.ErrTxClosed
	}
	user, err := t.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	clone := *user
	return &clone, nil
}

func (t *stagedTx) user(ctx context.Context, userID string) (*userdomain.User, error) {
	if user, ok := t.users[userID]; ok {
		return user, nil
	}
	user, err := t.uow.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userports.ErrNotFound) {
			return nil, ports.ErrUserNotFound
		}
		return nil, err
	}
	t.users[userID] = user
	return user, nil
}

func (t *stagedTx) LockPaymentByToken(ctx context.Context, token string) (*paymentdomain.Transaction, error) {
	if t.closed {
		return nil, ports.ErrTxClosed
	}
	payment, err := t.payment(ctx, token)
	if err != nil {
		return nil, err
	}
	clone := *payment
	return &clone, nil
}

func (t *stagedTx) payment(ctx context.Context, token string) (*paymentdomain.Transaction, error) {
	if payment, ok := t.payments[token]; ok {
		return payment, nil
	}
	payment, err := t.uow.payments.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, paymentports.ErrNotFound) {
			return nil, ports.ErrPaymentNotFound
		}
		return nil, err
	}
	t.payments[token] = payment
	return payment, nil
}

func (t *stagedTx) DebitUser(ctx context.Context, userID string, amount decimal.Decimal) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	if !amount.IsPositive() {
		return ports.ErrInvalidAmount
	}
	user, err := t.user(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.Debit(amount); err != nil {
		if errors.Is(err, userdomain.ErrInsufficientFunds) {
			return ports.ErrInsufficientFunds
		}
		return err
	}
	t.balances[userID] = struct{}{}
	return nil
}

func (t *stagedTx) CreditUser(ctx context.Context, userID string, amount decimal.Decimal) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	if !amount.IsPositive() {
		return ports.ErrInvalidAmount
	}
	user, err := t.user(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.Credit(amount); err != nil {
		return err
	}
	t.balances[userID] = struct{}{}
	return nil
}

func (t *stagedTx) SetPetStatus(ctx context.Context, petID string, status petdomain.Status, adopterID string) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	if _, err := t.LockPet(ctx, petID); err != nil {
		return err
	}
	pet := t.pets[petID]
	pet.Status = status
	pet.AdoptedBy = adopterID
	t.petChanges[petID] = struct{}{}
	return nil
}

func (t *stagedTx) RecordAdoption(_ context.Context, adoption *adoptiondomain.Adoption) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	clone := *adoption
	t.adoptions = append(t.adoptions, &clone)
	return nil
}

func (t *stagedTx) RecordPayment(_ context.Context, payment *paymentdomain.Transaction) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	clone := *payment
	t.newPays = append(t.newPays, &clone)
	return nil
}

func (t *stagedTx) FinalizePayment(ctx context.Context, token string, status paymentdomain.Status, method string) error {
	if t.closed {
		return ports.ErrTxClosed
	}
	payment, err := t.payment(ctx, token)
	if err != nil {
		return err
	}
	if err := payment.Finalize(status, method, t.uow.now()); err != nil {
		if errors.Is(err, paymentdomain.ErrAlreadyFinalized) {
			return ports.ErrPaymentFinalized
		}
		return err
	}
	t.finalized[token] = finalization{status: status, method: method}
	return nil
}

// commit validates the staged writes against the repositories, then applies them.
// Pet transitions go first as compare-and-set on the status LockPet observed;
// once they hold, the remaining writes were checked and cannot conflict.
func (t *stagedTx) commit(ctx context.Context) error {
	if err := t.validate(ctx); err != nil {
		return err
	}
	if err := t.applyPets(ctx); err != nil {
		return err
	}
	for _, p := range t.newPays {
		if err := t.uow.payments.Create(ctx, p); err != nil {
			return fmt.Errorf("commit payment %s: %w", p.Token, err)
		}
	}
	for token, f := range t.finalized {
		if err := t.uow.payments.Finalize(ctx, token, f.status, f.method, t.uow.now()); err != nil {
			return fmt.Errorf("commit finalize %s: %w", token, err)
		}
	}
	for _, a := range t.adoptions {
		if err := t.uow.adoptions.Create(ctx, a); err != nil {
			return fmt.Errorf("commit adoption %s: %w", a.ID, err)
		}
	}
	for id := range t.balances {
		if err := t.uow.users.SetBalance(ctx, id, t.users[id].Balance); err != nil {
			return fmt.Errorf("commit balance %s: %w", id, err)
		}
	}
	return nil
}

func (t *stagedTx) validate(ctx context.Context) error {
	for id := range t.petChanges {
		proj, err := t.uow.pets.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, petports.ErrNotFound) {
				return fmt.Errorf("%w: pet %s deleted", ports.ErrRowChanged, id)
			}
			return err
		}
		if proj.Entity.Status != t.observed[id] {
			return fmt.Errorf("%w: pet %s is now %s", ports.ErrRowChanged, id, proj.Entity.Status)
		}
	}
	for _, p := range t.newPays {
		if _, err := t.uow.payments.GetByToken(ctx, p.Token); err == nil {
			return fmt.Errorf("%w: payment %s already exists", ports.ErrRowChanged, p.Token)
		} else if !errors.Is(err, paymentports.ErrNotFound) {
			return err
		}
	}
	for token := range t.finalized {
		stored, err := t.uow.payments.GetByToken(ctx, token)
		if err != nil {
			return err
		}
		if stored.Status != paymentdomain.StatusPending {
			return fmt.Errorf("%w: payment %s", ports.ErrPaymentFinalized, token)
		}
	}
	for _, a := range t.adoptions {
		if _, err := t.uow.adoptions.GetByID(ctx, a.PetID, a.ID); err == nil {
			return fmt.Errorf("%w: adoption %s already exists", ports.ErrRowChanged, a.ID)
		}
	}
	for id := range t.balances {
		if _, err := t.uow.users.GetByID(ctx, id); err != nil {
			return err
		}
		if t.users[id].Balance.IsNegative() {
			return ports.ErrInsufficientFunds
		}
	}
	return nil
}

// applyPets restores already written pets when a later compare-and-set loses.
func (t *stagedTx) applyPets(ctx context.Context) error {
	var applied []string
	for id := range t.petChanges {
		pet := t.pets[id]
		err := t.uow.pets.CompareAndSetStatus(ctx, id, t.observed[id], pet.Status, pet.AdoptedBy)
		if err == nil {
			applied = append(applied, id)
			continue
		}
		for _, done := range applied {
			_ = t.uow.pets.CompareAndSetStatus(ctx, done, t.pets[done].Status, t.observed[done], t.observedBy[done])
		}
		if errors.Is(err, petmemory.ErrStatusChanged) || errors.Is(err, petports.ErrNotFound) {
			return fmt.Errorf("%w: pet %s", ports.ErrRowChanged, id)
		}
		return fmt.Errorf("commit pet %s: %w", id, err)
	}
	return nil
}

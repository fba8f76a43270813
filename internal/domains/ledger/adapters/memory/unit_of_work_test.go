package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/domains/ledger/ports"
	paymentmemory "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/memory"
	paymentdomain "github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

type fixture struct {
	uow       *UnitOfWork
	users     *usermemory.Repository
	pets      *petmemory.Repository
	payments  *paymentmemory.Repository
	adoptions *adoptionmemory.Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		users:     usermemory.NewRepository(),
		pets:      petmemory.NewRepository(petmemory.NewCategoryRepository()),
		payments:  paymentmemory.NewRepository(),
		adoptions: adoptionmemory.NewRepository(),
	}
	f.uow = NewUnitOfWork(f.users, f.pets, f.payments, f.adoptions)
	f.users.Seed(&userdomain.User{ID: "u1", Username: "alice", Balance: decimal.RequireFromString("100")})

	pet, err := petdomain.NewPet("p1", "owner", "Rex", decimal.RequireFromString("40"))
	require.NoError(t, err)
	_, err = f.pets.Create(context.Background(), pet)
	require.NoError(t, err)
	return f
}

func TestDoCommitsAllWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	err := f.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		if err := tx.DebitUser(ctx, "u1", decimal.RequireFromString("40")); err != nil {
			return err
		}
		if err := tx.SetPetStatus(ctx, "p1", petdomain.StatusAdopted, "u1"); err != nil {
			return err
		}
		adoption, err := adoptiondomain.NewAdoption("a1", "p1", "u1", decimal.RequireFromString("40"), now)
		if err != nil {
			return err
		}
		if err := tx.RecordAdoption(ctx, adoption); err != nil {
			return err
		}
		return tx.RecordPayment(ctx, paymentdomain.NewAdoptionExpense("t1", "TXN1", "u1", "p1", decimal.RequireFromString("40"), "BDT", now))
	})
	require.NoError(t, err)

	user, err := f.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(decimal.RequireFromString("60")))

	pet, err := f.pets.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, petdomain.StatusAdopted, pet.Entity.Status)
	assert.Equal(t, "u1", pet.Entity.AdoptedBy)

	_, err = f.adoptions.GetByID(ctx, "p1", "a1")
	require.NoError(t, err)
	payment, err := f.payments.GetByToken(ctx, "TXN1")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.TypeExpense, payment.Type)
}

func TestDoDiscardsWritesOnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		require.NoError(t, tx.DebitUser(ctx, "u1", decimal.RequireFromString("10")))
		require.NoError(t, tx.SetPetStatus(ctx, "p1", petdomain.StatusAdopted, "u1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	user, err := f.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(decimal.RequireFromString("100")))
	pet, err := f.pets.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, petdomain.StatusPending, pet.Entity.Status)
	page, err := f.adoptions.List(ctx, adoptionports.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestDebitRejectsOverdraft(t *testing.T) {
	f := newFixture(t)
	err := f.uow.Do(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		return tx.DebitUser(ctx, "u1", decimal.RequireFromString("100.01"))
	})
	require.ErrorIs(t, err, ports.ErrInsufficientFunds)
}

func TestLockMissingRows(t *testing.T) {
	f := newFixture(t)
	err := f.uow.Do(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		_, err := tx.LockUser(ctx, "ghost")
		assert.ErrorIs(t, err, ports.ErrUserNotFound)
		_, err = tx.LockPet(ctx, "ghost")
		assert.ErrorIs(t, err, ports.ErrPetNotFound)
		_, err = tx.LockPaymentByToken(ctx, "ghost")
		assert.ErrorIs(t, err, ports.ErrPaymentNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestFinalizeTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending, err := paymentdomain.NewPendingIncome("t1", "TXN1", "u1", decimal.RequireFromString("25"), "BDT", time.Now())
	require.NoError(t, err)
	require.NoError(t, f.payments.Create(ctx, pending))

	finalize := func(ctx context.Context, tx ports.Tx) error {
		if err := tx.FinalizePayment(ctx, "TXN1", paymentdomain.StatusSuccess, "card"); err != nil {
			return err
		}
		return tx.CreditUser(ctx, "u1", decimal.RequireFromString("25"))
	}
	require.NoError(t, f.uow.Do(ctx, finalize))
	require.ErrorIs(t, f.uow.Do(ctx, finalize), ports.ErrPaymentFinalized)

	user, err := f.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(decimal.RequireFromString("125")))
}

func TestTxClosedAfterDo(t *testing.T) {
	f := newFixture(t)
	var leaked ports.Tx
	require.NoError(t, f.uow.Do(context.Background(), func(_ context.Context, tx ports.Tx) error {
		leaked = tx
		return nil
	}))
	_, err := leaked.LockUser(context.Background(), "u1")
	require.ErrorIs(t, err, ports.ErrTxClosed)
	require.ErrorIs(t, leaked.CreditUser(context.Background(), "u1", decimal.NewFromInt(1)), ports.ErrTxClosed)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
				return tx.DebitUser(ctx, "u1", decimal.RequireFromString("30"))
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	user, err := f.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(decimal.RequireFromString("10")))
}

func stageAdoption(ctx context.Context, t *testing.T, tx ports.Tx) {
	t.Helper()
	now := time.Now()
	_, err := tx.LockPet(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, tx.DebitUser(ctx, "u1", decimal.RequireFromString("40")))
	adoption, err := adoptiondomain.NewAdoption("a1", "p1", "u1", decimal.RequireFromString("40"), now)
	require.NoError(t, err)
	require.NoError(t, tx.RecordAdoption(ctx, adoption))
	require.NoError(t, tx.RecordPayment(ctx, paymentdomain.NewAdoptionExpense("t1", "TXN1", "u1", "p1", decimal.RequireFromString("40"), "BDT", now)))
	require.NoError(t, tx.SetPetStatus(ctx, "p1", petdomain.StatusAdopted, "u1"))
}

func assertNothingApplied(ctx context.Context, t *testing.T, f fixture) {
	t.Helper()
	user, err := f.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(decimal.RequireFromString("100")), "balance %s", user.Balance)
	page, err := f.adoptions.List(ctx, adoptionports.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	_, err = f.payments.GetByToken(ctx, "TXN1")
	assert.Error(t, err)
}

func TestCommitAppliesNothingWhenPetChangedUnderneath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		stageAdoption(ctx, t, tx)
		// SetStatus bypasses the guard, so the unit sees the pet change before commit.
		return f.pets.SetStatus(ctx, "p1", petdomain.StatusWithdrawn, "")
	})
	require.ErrorIs(t, err, ports.ErrRowChanged)

	assertNothingApplied(ctx, t, f)
	pet, err := f.pets.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, petdomain.StatusWithdrawn, pet.Entity.Status)
	assert.Empty(t, pet.Entity.AdoptedBy)
}

func TestPetEditsWaitForRunningUnit(t *testing.T) {
	withdraw := func(ctx context.Context, f fixture) error {
		proj, err := f.pets.GetByID(ctx, "p1")
		if err != nil {
			return err
		}
		next := proj.Entity.Clone()
		next.Status = petdomain.StatusWithdrawn
		_, err = f.pets.Update(ctx, next)
		return err
	}
	remove := func(ctx context.Context, f fixture) error {
		return f.pets.Delete(ctx, "p1")
	}
	cases := map[string]func(context.Context, fixture) error{
		"update": withdraw,
		"delete": remove,
	}
	for name, edit := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			done := make(chan error, 1)

			err := f.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
				stageAdoption(ctx, t, tx)
				go func() { done <- edit(ctx, f) }()
				select {
				case err := <-done:
					t.Fatalf("pet edit finished inside the unit: %v", err)
				case <-time.After(20 * time.Millisecond):
				}
				return nil
			})
			require.NoError(t, err)

			require.ErrorIs(t, <-done, petdomain.ErrAlreadyAdopted)
			pet, err := f.pets.GetByID(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, petdomain.StatusAdopted, pet.Entity.Status)
			assert.Equal(t, "u1", pet.Entity.AdoptedBy)
			user, err := f.users.GetByID(ctx, "u1")
			require.NoError(t, err)
			assert.True(t, user.Balance.Equal(decimal.RequireFromString("60")))
		})
	}
}

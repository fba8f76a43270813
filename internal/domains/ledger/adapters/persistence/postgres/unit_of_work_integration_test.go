//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	adoptionpg "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/ledger/ports"
	paymentpg "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/persistence/postgres"
	paymentdomain "github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	paymentports "github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	petpg "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	userpg "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/platform/postgres/pgtest"
)

func seedUser(t *testing.T, db *gorm.DB, balance string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := userpg.NewRepository(db).Create(context.Background(), &userdomain.User{
		ID:           id,
		Username:     "user-" + id[:8],
		PasswordHash: "x",
		Balance:      decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
	return id
}

func seedAdoptablePet(t *testing.T, db *gorm.DB, fee string) string {
	t.Helper()
	pet, err := petdomain.NewPet(uuid.NewString(), uuid.NewString(), "Rex", decimal.RequireFromString(fee))
	require.NoError(t, err)
	require.NoError(t, pet.ChangeStatus(petdomain.StatusApproved, true))
	require.NoError(t, pet.SetVisibility(petdomain.VisibilityPublic))
	_, err = petpg.NewRepository(db).Create(context.Background(), pet)
	require.NoError(t, err)
	return pet.ID
}

func balanceOf(t *testing.T, db *gorm.DB, id string) decimal.Decimal {
	t.Helper()
	user, err := userpg.NewRepository(db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return user.Balance
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	db := pgtest.Start(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()
	userID := seedUser(t, db, "100")
	petID := seedAdoptablePet(t, db, "30")
	boom := errors.New("boom")

	err := uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		require.NoError(t, tx.DebitUser(ctx, userID, decimal.RequireFromString("30")))
		require.NoError(t, tx.SetPetStatus(ctx, petID, petdomain.StatusAdopted, userID))
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.True(t, balanceOf(t, db, userID).Equal(decimal.RequireFromString("100")))
	pet, err := petpg.NewRepository(db).GetByID(ctx, petID)
	require.NoError(t, err)
	assert.Equal(t, petdomain.StatusApproved, pet.Entity.Status)
}

func TestUnitOfWork_DebitGuard(t *testing.T) {
	db := pgtest.Start(t)
	uow := NewUnitOfWork(db)
	userID := seedUser(t, db, "10")

	err := uow.Do(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		return tx.DebitUser(ctx, userID, decimal.RequireFromString("10.01"))
	})
	require.ErrorIs(t, err, ports.ErrInsufficientFunds)

	err = uow.Do(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		return tx.DebitUser(ctx, uuid.NewString(), decimal.RequireFromString("1"))
	})
	require.ErrorIs(t, err, ports.ErrUserNotFound)
}

func TestUnitOfWork_FinalizeOnce(t *testing.T) {
	db := pgtest.Start(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()
	userID := seedUser(t, db, "0")

	pending, err := paymentdomain.NewPendingIncome(uuid.NewString(), "TXN-INT-1", userID, decimal.RequireFromString("75.50"), "BDT", time.Now())
	require.NoError(t, err)
	require.NoError(t, paymentpg.NewRepository(db).Create(ctx, pending))

	credit := func(ctx context.Context, tx ports.Tx) error {
		payment, err := tx.LockPaymentByToken(ctx, "TXN-INT-1")
		if err != nil {
			return err
		}
		if err := tx.FinalizePayment(ctx, payment.Token, paymentdomain.StatusSuccess, "VISA"); err != nil {
			return err
		}
		return tx.CreditUser(ctx, payment.UserID, payment.Amount)
	}
	require.NoError(t, uow.Do(ctx, credit))
	require.ErrorIs(t, uow.Do(ctx, credit), ports.ErrPaymentFinalized)

	assert.True(t, balanceOf(t, db, userID).Equal(decimal.RequireFromString("75.50")))
	stored, err := paymentpg.NewRepository(db).GetByToken(ctx, "TXN-INT-1")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusSuccess, stored.Status)
	assert.Equal(t, "VISA", stored.Method)
}

func TestPaymentList_SearchesPetName(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	userID := seedUser(t, db, "0")
	petID := seedAdoptablePet(t, db, "30")
	payments := paymentpg.NewRepository(db)

	require.NoError(t, payments.Create(ctx, &paymentdomain.Transaction{
		ID:        uuid.NewString(),
		Token:     "ADOPT-INT-1",
		Amount:    decimal.RequireFromString("30"),
		Currency:  "BDT",
		Method:    paymentdomain.MethodWallet,
		Status:    paymentdomain.StatusSuccess,
		Type:      paymentdomain.TypeExpense,
		UserID:    userID,
		PetID:     petID,
		CreatedAt: time.Now(),
	}))
	pending, err := paymentdomain.NewPendingIncome(uuid.NewString(), "TXN-INT-2", userID, decimal.RequireFromString("10"), "BDT", time.Now())
	require.NoError(t, err)
	require.NoError(t, payments.Create(ctx, pending))

	page, err := payments.List(ctx, paymentports.ListFilter{UserID: userID, Search: "rE"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "ADOPT-INT-1", page.Items[0].Token)

	page, err = payments.List(ctx, paymentports.ListFilter{UserID: userID, Search: "whiskers"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestAdoptPet_ConcurrentAdoptersOneWinner(t *testing.T) {
	db := pgtest.Start(t)
	svc := adoptionapp.NewService(NewUnitOfWork(db), adoptionpg.NewRepository(db))
	ctx := context.Background()
	petID := seedAdoptablePet(t, db, "50")

	adopters := make([]string, 6)
	for i := range adopters {
		adopters[i] = seedUser(t, db, "50")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for _, id := range adopters {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.AdoptPet(ctx, adoptiontypes.AdoptInput{PetID: petID, ActorID: id})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, adoptionapp.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, len(adopters)-1, conflicts)

	zeroed := 0
	for _, id := range adopters {
		if balanceOf(t, db, id).IsZero() {
			zeroed++
		}
	}
	assert.Equal(t, 1, zeroed)

	history, err := svc.ListAdoptions(ctx, petID, adoptiontypes.ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, history.Total)
}

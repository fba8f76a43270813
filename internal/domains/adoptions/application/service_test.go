package application

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
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	ledgermemory "github.com/Apurer/pet-adoption-api/internal/domains/ledger/adapters/memory"
	paymentmemory "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/memory"
	paymentdomain "github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	paymentports "github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type world struct {
	svc       *Service
	users     *usermemory.Repository
	pets      *petmemory.Repository
	payments  *paymentmemory.Repository
	adoptions *adoptionmemory.Repository
	pub       *recordingPublisher
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		users:     usermemory.NewRepository(),
		pets:      petmemory.NewRepository(petmemory.NewCategoryRepository()),
		payments:  paymentmemory.NewRepository(),
		adoptions: adoptionmemory.NewRepository(),
		pub:       &recordingPublisher{},
	}
	uow := ledgermemory.NewUnitOfWork(w.users, w.pets, w.payments, w.adoptions)
	w.svc = NewService(uow, w.adoptions, WithPublisher(w.pub), WithClock(func() time.Time { return fixedNow }))
	return w
}

func (w *world) user(id, balance string) {
	w.users.Seed(&userdomain.User{ID: id, Username: id, Balance: decimal.RequireFromString(balance)})
}

func (w *world) pet(t *testing.T, id, fee string, status petdomain.Status, visibility petdomain.Visibility) {
	t.Helper()
	p, err := petdomain.NewPet(id, "owner", "Pet "+id, decimal.RequireFromString(fee))
	require.NoError(t, err)
	p.Status = status
	p.Visibility = visibility
	_, err = w.pets.Create(context.Background(), p)
	require.NoError(t, err)
}

func (w *world) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	u, err := w.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u.Balance
}

func TestAdoptPetSuccess(t *testing.T) {
	w := newWorld(t)
	w.user("alice", "100")
	w.pet(t, "rex", "40", petdomain.StatusApproved, petdomain.VisibilityPublic)
	ctx := context.Background()

	adoption, err := w.svc.AdoptPet(ctx, types.AdoptInput{PetID: "rex", ActorID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", adoption.AdoptedBy)
	assert.True(t, adoption.Fee.Equal(decimal.RequireFromString("40")))
	assert.Equal(t, fixedNow, adoption.Date)

	assert.True(t, w.balance(t, "alice").Equal(decimal.RequireFromString("60")))
	pet, err := w.pets.GetByID(ctx, "rex")
	require.NoError(t, err)
	assert.Equal(t, petdomain.StatusAdopted, pet.Entity.Status)
	assert.Equal(t, "alice", pet.Entity.AdoptedBy)

	history, err := w.svc.ListAdoptions(ctx, "rex", types.ListQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 1, history.Total)

	expenses, err := w.payments.List(ctx, paymentports.ListFilter{UserID: "alice", Type: paymentdomain.TypeExpense})
	require.NoError(t, err)
	require.Len(t, expenses.Items, 1)
	assert.Equal(t, paymentdomain.StatusSuccess, expenses.Items[0].Status)
	assert.Equal(t, "rex", expenses.Items[0].PetID)

	require.Len(t, w.pub.events, 1)
	assert.Equal(t, "adoptions.adoption.completed", w.pub.events[0].EventName())
}

func TestAdoptPetInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	w := newWorld(t)
	w.user("alice", "10")
	w.pet(t, "rex", "40", petdomain.StatusApproved, petdomain.VisibilityPublic)
	ctx := context.Background()

	_, err := w.svc.AdoptPet(ctx, types.AdoptInput{PetID: "rex", ActorID: "alice"})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.True(t, w.balance(t, "alice").Equal(decimal.RequireFromString("10")))
	pet, err := w.pets.GetByID(ctx, "rex")
	require.NoError(t, err)
	assert.Equal(t, petdomain.StatusApproved, pet.Entity.Status)
	history, err := w.svc.ListAdoptions(ctx, "rex", types.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, history.Total)
	assert.Empty(t, w.pub.events)
}

func TestAdoptPetNotAdoptable(t *testing.T) {
	cases := []struct {
		name       string
		status     petdomain.Status
		visibility petdomain.Visibility
	}{
		{"pending", petdomain.StatusPending, petdomain.VisibilityPublic},
		{"private", petdomain.StatusApproved, petdomain.VisibilityPrivate},
		{"withdrawn", petdomain.StatusWithdrawn, petdomain.VisibilityPublic},
		{"adopted", petdomain.StatusAdopted, petdomain.VisibilityPublic},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newWorld(t)
			w.user("alice", "100")
			w.pet(t, "rex", "40", tc.status, tc.visibility)

			_, err := w.svc.AdoptPet(context.Background(), types.AdoptInput{PetID: "rex", ActorID: "alice"})
			require.ErrorIs(t, err, ErrConflict)
			assert.True(t, w.balance(t, "alice").Equal(decimal.RequireFromString("100")))
		})
	}
}

func TestAdoptPetMissingRows(t *testing.T) {
	w := newWorld(t)
	w.user("alice", "100")
	w.pet(t, "rex", "40", petdomain.StatusApproved, petdomain.VisibilityPublic)

	_, err := w.svc.AdoptPet(context.Background(), types.AdoptInput{PetID: "ghost", ActorID: "alice"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = w.svc.AdoptPet(context.Background(), types.AdoptInput{PetID: "rex", ActorID: "ghost"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = w.svc.AdoptPet(context.Background(), types.AdoptInput{PetID: "", ActorID: "alice"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdoptPetExactBalanceThenConflict(t *testing.T) {
	w := newWorld(t)
	w.user("alice", "50")
	w.pet(t, "rex", "50", petdomain.StatusApproved, petdomain.VisibilityPublic)
	ctx := context.Background()

	_, err := w.svc.AdoptPet(ctx, types.AdoptInput{PetID: "rex", ActorID: "alice"})
	require.NoError(t, err)
	assert.True(t, w.balance(t, "alice").IsZero())

	_, err = w.svc.AdoptPet(ctx, types.AdoptInput{PetID: "rex", ActorID: "alice"})
	require.ErrorIs(t, err, ErrConflict)
	assert.True(t, w.balance(t, "alice").IsZero())
}

func TestAdoptPetOnBehalfDebitsDesignatedAdopter(t *testing.T) {
	w := newWorld(t)
	w.user("staff", "0")
	w.user("bob", "45")
	w.pet(t, "rex", "45", petdomain.StatusApproved, petdomain.VisibilityPublic)

	adoption, err := w.svc.AdoptPet(context.Background(), types.AdoptInput{PetID: "rex", ActorID: "staff", AdopterID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", adoption.AdoptedBy)
	assert.True(t, w.balance(t, "bob").IsZero())
	assert.True(t, w.balance(t, "staff").IsZero())

	completed, ok := w.pub.events[0].(domain.AdoptionCompleted)
	require.True(t, ok)
	assert.Equal(t, "staff", completed.ActorID)
	assert.Equal(t, "bob", completed.AdopterID)
}

func TestAdoptFreePetRecordsNoExpense(t *testing.T) {
	w := newWorld(t)
	w.user("alice", "0")
	w.pet(t, "rex", "0", petdomain.StatusApproved, petdomain.VisibilityPublic)
	ctx := context.Background()

	_, err := w.svc.AdoptPet(ctx, types.AdoptInput{PetID: "rex", ActorID: "alice"})
	require.NoError(t, err)
	expenses, err := w.payments.List(ctx, paymentports.ListFilter{UserID: "alice"})
	require.NoError(t, err)
	assert.Zero(t, expenses.Total)
}

func TestConcurrentAdoptionsOfOnePetYieldOneSuccess(t *testing.T) {
	w := newWorld(t)
	w.pet(t, "rex", "20", petdomain.StatusApproved, petdomain.VisibilityPublic)
	adopters := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range adopters {
		w.user(id, "100")
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
			_, err := w.svc.AdoptPet(context.Background(), types.AdoptInput{PetID: "rex", ActorID: id})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConflict):
				conflicts++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, len(adopters)-1, conflicts)

	spent := decimal.Zero
	for _, id := range adopters {
		spent = spent.Add(decimal.RequireFromString("100").Sub(w.balance(t, id)))
	}
	assert.True(t, spent.Equal(decimal.RequireFromString("20")))
}

func TestListAdoptionsFilters(t *testing.T) {
	w := newWorld(t)
	w.user("alice", "100")
	w.pet(t, "rex", "10", petdomain.StatusApproved, petdomain.VisibilityPublic)
	ctx := context.Background()

	adoption, err := w.svc.AdoptPet(ctx, types.AdoptInput{PetID: "rex", ActorID: "alice"})
	require.NoError(t, err)

	got, err := w.svc.GetAdoption(ctx, "rex", adoption.ID)
	require.NoError(t, err)
	assert.Equal(t, adoption.ID, got.ID)

	_, err = w.svc.GetAdoption(ctx, "other", adoption.ID)
	require.ErrorIs(t, err, ErrNotFound)

	page, err := w.svc.ListAdoptions(ctx, "rex", types.ListQuery{AdoptedBy: "bob"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	after := fixedNow.Add(time.Hour)
	page, err = w.svc.ListAdoptions(ctx, "rex", types.ListQuery{DateAfter: &after})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	before := fixedNow.Add(time.Hour)
	page, err = w.svc.ListAdoptions(ctx, "rex", types.ListQuery{DateBefore: &before, Ordering: "bogus"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, DefaultPageSize, page.PageSize)
}

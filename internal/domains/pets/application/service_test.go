package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

type recordingPublisher struct {
	names []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.names = append(p.names, e.EventName())
	return nil
}

func newTestService(t *testing.T) (*Service, *petmemory.Repository, *recordingPublisher) {
	t.Helper()
	categories := petmemory.NewCategoryRepository()
	repo := petmemory.NewRepository(categories)
	pub := &recordingPublisher{}
	return NewService(repo, categories, WithPublisher(pub)), repo, pub
}

func ptr[T any](v T) *T { return &v }

var (
	owner     = pettypes.Actor{UserID: "owner"}
	stranger  = pettypes.Actor{UserID: "stranger"}
	moderator = pettypes.Actor{UserID: "staff", Moderator: true}
)

func createPet(t *testing.T, svc *Service, name string, fee int64) string {
	t.Helper()
	proj, err := svc.CreatePet(context.Background(), owner, pettypes.PetInput{
		Name: ptr(name),
		Fee:  ptr(decimal.NewFromInt(fee)),
	})
	require.NoError(t, err)
	return proj.Entity.ID
}

func publish(t *testing.T, svc *Service, id string) {
	t.Helper()
	_, err := svc.UpdatePet(context.Background(), moderator, id, pettypes.PetInput{
		Status:     ptr(string(domain.StatusApproved)),
		Visibility: ptr(string(domain.VisibilityPublic)),
	})
	require.NoError(t, err)
}

func TestCreatePet_Success(t *testing.T) {
	svc, _, pub := newTestService(t)

	proj, err := svc.CreatePet(context.Background(), owner, pettypes.PetInput{
		Name:      ptr("Rex"),
		Fee:       ptr(decimal.RequireFromString("25.50")),
		PhotoURLs: ptr([]string{"http://example.com/rex.jpg"}),
	})

	require.NoError(t, err)
	assert.Equal(t, "owner", proj.Entity.OwnerID)
	assert.Equal(t, domain.StatusPending, proj.Entity.Status)
	assert.Equal(t, domain.VisibilityPrivate, proj.Entity.Visibility)
	assert.False(t, proj.Metadata.CreatedAt.IsZero())
	assert.Equal(t, []string{"pets.pet.listed"}, pub.names)
}

func TestCreatePet_InvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreatePet(context.Background(), owner, pettypes.PetInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePet(context.Background(), owner, pettypes.PetInput{Name: ptr("Rex"), CategoryID: ptr("missing")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePet_OwnerCannotSelfApprove(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreatePet(context.Background(), owner, pettypes.PetInput{
		Name:   ptr("Rex"),
		Status: ptr(string(domain.StatusApproved)),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetPet_HiddenFromStrangers(t *testing.T) {
	svc, _, _ := newTestService(t)
	id := createPet(t, svc, "Rex", 10)

	_, err := svc.GetPet(context.Background(), stranger, id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetPet(context.Background(), owner, id)
	assert.NoError(t, err)

	publish(t, svc, id)
	_, err = svc.GetPet(context.Background(), pettypes.Actor{}, id)
	assert.NoError(t, err)
}

func TestUpdatePet_Permissions(t *testing.T) {
	svc, _, pub := newTestService(t)
	id := createPet(t, svc, "Rex", 10)
	publish(t, svc, id)

	_, err := svc.UpdatePet(context.Background(), stranger, id, pettypes.PetInput{Name: ptr("Nope")})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdatePet(context.Background(), owner, id, pettypes.PetInput{
		Name:   ptr("Rexy"),
		Status: ptr(string(domain.StatusWithdrawn)),
	})
	require.NoError(t, err)
	assert.Equal(t, "Rexy", updated.Entity.Name)
	assert.Equal(t, domain.StatusWithdrawn, updated.Entity.Status)
	assert.Contains(t, pub.names, "pets.pet.status_changed")

	_, err = svc.UpdatePet(context.Background(), owner, id, pettypes.PetInput{Status: ptr(string(domain.StatusAdopted))})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateAndDelete_AdoptedPetIsFrozen(t *testing.T) {
	svc, repo, _ := newTestService(t)
	id := createPet(t, svc, "Rex", 10)
	publish(t, svc, id)
	require.NoError(t, repo.SetStatus(context.Background(), id, domain.StatusAdopted, "adopter"))

	_, err := svc.UpdatePet(context.Background(), moderator, id, pettypes.PetInput{Status: ptr(string(domain.StatusApproved))})
	assert.ErrorIs(t, err, ErrConflict)

	assert.ErrorIs(t, svc.DeletePet(context.Background(), owner, id), ErrConflict)
}

func TestDeletePet(t *testing.T) {
	svc, _, _ := newTestService(t)
	id := createPet(t, svc, "Rex", 10)

	assert.ErrorIs(t, svc.DeletePet(context.Background(), stranger, id), ErrNotFound)
	require.NoError(t, svc.DeletePet(context.Background(), owner, id))
	_, err := svc.GetPet(context.Background(), owner, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPets_PublicCatalogFilters(t *testing.T) {
	svc, repo, _ := newTestService(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	cat, err := svc.CreateCategory(context.Background(), pettypes.CategoryInput{Name: ptr("Dogs")})
	require.NoError(t, err)

	cheap := createPet(t, svc, "Rex", 20)
	_, err = svc.UpdatePet(context.Background(), owner, cheap, pettypes.PetInput{CategoryID: ptr(cat.ID)})
	require.NoError(t, err)
	publish(t, svc, cheap)
	pricey := createPet(t, svc, "Luna", 80)
	publish(t, svc, pricey)
	createPet(t, svc, "Hidden", 5)

	page, err := svc.ListPets(context.Background(), pettypes.ListQuery{Ordering: "fee"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Rex", page.Items[0].Entity.Name)

	page, err = svc.ListPets(context.Background(), pettypes.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Luna", page.Items[0].Entity.Name, "default ordering is newest update first")

	gt := decimal.NewFromInt(50)
	page, err = svc.ListPets(context.Background(), pettypes.ListQuery{FeeGT: &gt})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, pricey, page.Items[0].Entity.ID)

	page, err = svc.ListPets(context.Background(), pettypes.ListQuery{Search: "dogs"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, cheap, page.Items[0].Entity.ID)

	mine, err := svc.ListMyPets(context.Background(), owner, pettypes.ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, mine.Total)
	assert.Equal(t, DefaultPageSize, mine.PageSize)
}

func TestCategories(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, pettypes.CategoryInput{Name: ptr("Cats")})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, pettypes.CategoryInput{Name: ptr("cats")})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateCategory(ctx, pettypes.CategoryInput{Name: ptr(" ")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.UpdateCategory(ctx, created.ID, pettypes.CategoryInput{Description: ptr("Felines")})
	require.NoError(t, err)
	assert.Equal(t, "Felines", updated.Description)

	require.NoError(t, svc.DeleteCategory(ctx, created.ID))
	_, err = svc.GetCategory(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

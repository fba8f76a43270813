package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/adapters/memory"
	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/ports"
)

type stubPets map[string]bool

func (s stubPets) PetExists(_ context.Context, petID string) error {
	if !s[petID] {
		return ports.ErrPetNotFound
	}
	return nil
}

func ptr(s string) *string { return &s }

func newService() *Service {
	return NewService(memory.NewRepository(), stubPets{"pet-1": true, "pet-2": true})
}

var (
	alice = types.Actor{UserID: "alice"}
	bob   = types.Actor{UserID: "bob"}
	staff = types.Actor{UserID: "staff", Moderator: true}
)

func TestCreateReview_OnePerPetPerReviewer(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.CreateReview(ctx, alice, "pet-1", types.ReviewInput{Comments: ptr("great")})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Entity.ReviewerID)

	_, err = svc.CreateReview(ctx, alice, "pet-1", types.ReviewInput{Comments: ptr("again")})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateReview(ctx, alice, "pet-2", types.ReviewInput{Comments: ptr("other pet")})
	assert.NoError(t, err)

	_, err = svc.CreateReview(ctx, bob, "pet-1", types.ReviewInput{Comments: ptr("me too")})
	assert.NoError(t, err)
}

func TestCreateReview_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, alice, "pet-1", types.ReviewInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateReview(ctx, alice, "missing", types.ReviewInput{Comments: ptr("hi")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAndDelete_ReviewerOrModerator(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	created, err := svc.CreateReview(ctx, alice, "pet-1", types.ReviewInput{Comments: ptr("great")})
	require.NoError(t, err)
	id := created.Entity.ID

	_, err = svc.UpdateReview(ctx, bob, "pet-1", id, types.ReviewInput{Comments: ptr("hijack")})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateReview(ctx, alice, "pet-1", id, types.ReviewInput{Comments: ptr("even better")})
	require.NoError(t, err)
	assert.Equal(t, "even better", updated.Entity.Comments)

	_, err = svc.GetReview(ctx, "pet-2", id)
	assert.ErrorIs(t, err, ErrNotFound, "reviews are scoped to their pet")

	assert.ErrorIs(t, svc.DeleteReview(ctx, bob, "pet-1", id), ErrForbidden)
	require.NoError(t, svc.DeleteReview(ctx, staff, "pet-1", id))

	page, err := svc.ListReviews(ctx, "pet-1", types.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestListReviews_FiltersByReviewer(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.CreateReview(ctx, alice, "pet-1", types.ReviewInput{Comments: ptr("a")})
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, bob, "pet-1", types.ReviewInput{Comments: ptr("b")})
	require.NoError(t, err)

	page, err := svc.ListReviews(ctx, "pet-1", types.ListQuery{ReviewerID: "bob"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].Entity.Comments)

	_, err = svc.ListReviews(ctx, "missing", types.ListQuery{})
	assert.ErrorIs(t, err, ErrNotFound)
}

//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/postgres/pgtest"
)

func TestRepository_HistoryFiltersAndOrdering(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()
	petID := uuid.NewString()
	alice, bob := uuid.NewString(), uuid.NewString()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, adopter := range []string{alice, bob, alice} {
		a, err := domain.NewAdoption(uuid.NewString(), petID, adopter, decimal.NewFromInt(10), base.Add(time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, a))
	}

	page, err := repo.List(ctx, ports.ListFilter{PetID: petID, OrderBy: "-date"})
	require.NoError(t, err)
	require.EqualValues(t, 3, page.Total)
	assert.True(t, page.Items[0].Date.After(page.Items[1].Date))

	page, err = repo.List(ctx, ports.ListFilter{PetID: petID, AdoptedBy: alice})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	after := base.Add(12 * time.Hour)
	page, err = repo.List(ctx, ports.ListFilter{PetID: petID, DateAfter: &after})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	got, err := repo.GetByID(ctx, petID, page.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Fee.Equal(decimal.NewFromInt(10)))

	_, err = repo.GetByID(ctx, uuid.NewString(), page.Items[0].ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

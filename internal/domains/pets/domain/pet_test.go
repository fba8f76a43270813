package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApprovedPet(t *testing.T) *Pet {
	t.Helper()
	pet, err := NewPet("p1", "owner", "Rex", decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, pet.ChangeStatus(StatusApproved, true))
	require.NoError(t, pet.SetVisibility(VisibilityPublic))
	return pet
}

func TestNewPet_Defaults(t *testing.T) {
	pet, err := NewPet("p1", "owner", "  Rex ", decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	assert.Equal(t, "Rex", pet.Name)
	assert.Equal(t, StatusPending, pet.Status)
	assert.Equal(t, VisibilityPrivate, pet.Visibility)
	assert.True(t, pet.Fee.Equal(decimal.RequireFromString("12.5")))
}

func TestNewPet_Invalid(t *testing.T) {
	_, err := NewPet("p1", "owner", " ", decimal.Zero)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = NewPet("p1", "owner", "Rex", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegativeFee)

	_, err = NewPet("p1", "owner", "Rex", decimal.RequireFromString("1.005"))
	assert.ErrorIs(t, err, ErrFeePrecision)

	_, err = NewPet("p1", "", "Rex", decimal.Zero)
	assert.ErrorIs(t, err, ErrEmptyOwner)
}

func TestChangeStatus_Roles(t *testing.T) {
	pet, err := NewPet("p1", "owner", "Rex", decimal.Zero)
	require.NoError(t, err)

	assert.ErrorIs(t, pet.ChangeStatus(StatusApproved, false), ErrStatusNotAllowed)
	assert.ErrorIs(t, pet.ChangeStatus(StatusSuspended, false), ErrStatusNotAllowed)
	assert.NoError(t, pet.ChangeStatus(StatusWithdrawn, false))
	assert.NoError(t, pet.ChangeStatus(StatusPending, false))
	assert.NoError(t, pet.ChangeStatus(StatusApproved, true))
	assert.ErrorIs(t, pet.ChangeStatus(StatusAdopted, true), ErrStatusNotAllowed)
	assert.ErrorIs(t, pet.ChangeStatus("sold", true), ErrInvalidStatus)
}

func TestAdoptable(t *testing.T) {
	pet, err := NewPet("p1", "owner", "Rex", decimal.Zero)
	require.NoError(t, err)
	assert.ErrorIs(t, pet.Adoptable(), ErrNotAdoptable)

	require.NoError(t, pet.ChangeStatus(StatusApproved, true))
	assert.ErrorIs(t, pet.Adoptable(), ErrNotAdoptable, "private listings are not adoptable")

	require.NoError(t, pet.SetVisibility(VisibilityPublic))
	assert.NoError(t, pet.Adoptable())
}

func TestMarkAdopted_IsOneWay(t *testing.T) {
	pet := newApprovedPet(t)
	require.NoError(t, pet.MarkAdopted("adopter"))
	assert.Equal(t, StatusAdopted, pet.Status)
	assert.Equal(t, "adopter", pet.AdoptedBy)

	assert.ErrorIs(t, pet.MarkAdopted("other"), ErrAlreadyAdopted)
	assert.ErrorIs(t, pet.ChangeStatus(StatusWithdrawn, true), ErrAlreadyAdopted)
	assert.Equal(t, "adopter", pet.AdoptedBy)
}

func TestVisibility(t *testing.T) {
	pet, err := NewPet("p1", "owner", "Rex", decimal.Zero)
	require.NoError(t, err)
	assert.False(t, pet.VisibleTo("", false))
	assert.False(t, pet.VisibleTo("stranger", false))
	assert.True(t, pet.VisibleTo("owner", false))
	assert.True(t, pet.VisibleTo("stranger", true))

	listed := newApprovedPet(t)
	assert.True(t, listed.VisibleTo("", false))
	assert.False(t, listed.ManageableBy("stranger", false))
}

func TestReplacePhotos_DropsBlank(t *testing.T) {
	pet := newApprovedPet(t)
	pet.ReplacePhotos([]string{"a.jpg", " ", "b.jpg"})
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, pet.PhotoURLs)

	clone := pet.Clone()
	clone.PhotoURLs[0] = "changed"
	assert.Equal(t, "a.jpg", pet.PhotoURLs[0])
}

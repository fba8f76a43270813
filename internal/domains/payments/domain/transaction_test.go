package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("10.50")))
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("0.01")))
	assert.ErrorIs(t, ValidateAmount(decimal.Zero), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAmount(decimal.NewFromInt(-5)), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("1.001")), ErrAmountPrecision)
}

func TestNewToken(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("x", 6*3600))
	token := NewToken(at, "3f2a9c1e-aaaa-bbbb-cccc-000000000000")
	assert.Equal(t, "TXN20240309080507"+"3F2A9C1EAAAA", token)
}

func TestFinalize_OnlyFromPending(t *testing.T) {
	now := time.Now()
	tx, err := NewPendingIncome("id", "TXN1", "u1", decimal.NewFromInt(100), "BDT", now)
	require.NoError(t, err)

	assert.True(t, tx.Credits(StatusSuccess))
	assert.False(t, tx.Credits(StatusFailed))

	assert.ErrorIs(t, tx.Finalize(StatusPending, "", now), ErrInvalidTransition)
	require.NoError(t, tx.Finalize(StatusSuccess, "VISA", now))
	assert.Equal(t, "VISA", tx.Method)
	assert.ErrorIs(t, tx.Finalize(StatusCancelled, "", now), ErrAlreadyFinalized)
	assert.Equal(t, StatusSuccess, tx.Status)
}

func TestOutcomeStatus(t *testing.T) {
	s, err := OutcomeCancel.Status()
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, s)

	_, err = Outcome("refund").Status()
	assert.ErrorIs(t, err, ErrUnknownOutcome)
}

func TestAdoptionExpenseIsSettled(t *testing.T) {
	tx := NewAdoptionExpense("id", "TXN2", "u1", "p1", decimal.NewFromInt(50), "BDT", time.Now())
	assert.Equal(t, StatusSuccess, tx.Status)
	assert.Equal(t, TypeExpense, tx.Type)
	assert.False(t, tx.Credits(StatusSuccess))
}

package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_HashesPassword(t *testing.T) {
	user, err := NewUser("u-1", " alice ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.True(t, user.CheckPassword("correct-horse"))
	assert.False(t, user.CheckPassword("wrong-horse"))
	assert.True(t, user.Balance.IsZero())
}

func TestNewUser_RejectsWeakPassword(t *testing.T) {
	_, err := NewUser("u-1", "alice", "short")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestDebitAndCredit(t *testing.T) {
	user := &User{ID: "u-1", Username: "alice", Balance: decimal.RequireFromString("50")}

	require.ErrorIs(t, user.Debit(decimal.RequireFromString("50.01")), ErrInsufficientFunds)
	assert.True(t, user.Balance.Equal(decimal.RequireFromString("50")))

	require.NoError(t, user.Debit(decimal.RequireFromString("50")))
	assert.True(t, user.Balance.IsZero())

	require.ErrorIs(t, user.Credit(decimal.Zero), ErrInvalidAmount)
	require.NoError(t, user.Credit(decimal.RequireFromString("12.50")))
	assert.Equal(t, "12.5", user.Balance.String())
}

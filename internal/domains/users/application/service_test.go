package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

func newTestService(now func() time.Time) (*Service, *usermemory.Repository, *usermemory.SessionStore) {
	repo := usermemory.NewRepository()
	sessions := usermemory.NewSessionStore()
	return NewService(repo, sessions, WithClock(now), WithSessionTTL(time.Hour)), repo, sessions
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(time.Now)

	user, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Password: "password1", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.True(t, user.Balance.IsZero())

	result, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	resolved, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	require.NoError(t, svc.Logout(ctx, result.Token))
	_, err = svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(time.Now)

	_, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, ports.RegisterInput{Username: "ALICE", Password: "password2"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestRegister_InvalidInput(t *testing.T) {
	svc, _, _ := newTestService(time.Now)
	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pw"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(time.Now)
	_, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "password2")
	require.ErrorIs(t, err, ErrAuthentication)
	_, err = svc.Login(ctx, "nobody", "password2")
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(func() time.Time { return current })
	_, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	result, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	_, err = svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestUpdateProfile_KeepsBalance(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(time.Now)
	user, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)

	first := "Alice"
	email := "not-an-email"
	_, err = svc.UpdateProfile(ctx, user.ID, ports.ProfileInput{Email: &email})
	require.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.UpdateProfile(ctx, user.ID, ports.ProfileInput{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.IsZero())
}

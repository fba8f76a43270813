package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Repository persists user accounts. Balances are written only by the ledger.
type Repository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateProfile writes profile fields and the password hash, never the balance.
	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

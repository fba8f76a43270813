package ports

import (
	"context"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// ProfileInput carries optional profile changes.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Password  *string
}

// LoginResult is the bearer token issued on login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, input ProfileInput) (*domain.User, error)
}

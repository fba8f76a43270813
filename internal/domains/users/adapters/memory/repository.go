package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user persistence adapter.
type Repository struct {
	mu         sync.RWMutex
	users      map[string]*domain.User
	byUsername map[string]string
}

func NewRepository() *Repository {
	return &Repository{users: map[string]*domain.User{}, byUsername: map[string]string{}}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (r *Repository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byUsername[normalize(clone.Username)]; taken {
		return nil, ports.ErrUsernameTaken
	}
	r.users[clone.ID] = &clone
	r.byUsername[normalize(clone.Username)] = clone.ID
	out := clone
	return &out, nil
}

func (r *Repository) UpdateProfile(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Email = user.Email
	stored.Phone = user.Phone
	stored.PasswordHash = user.PasswordHash
	out := *stored
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byUsername[normalize(username)]
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// SetBalance overwrites a wallet balance. Only the ledger calls it, on commit.
func (r *Repository) SetBalance(_ context.Context, id string, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return domain.ErrNegativeBalance
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ports.ErrNotFound
	}
	user.Balance = balance
	return nil
}

// Seed stores a user as-is, including staff flag and balance.
func (r *Repository) Seed(user *domain.User) {
	clone := *user
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[clone.ID] = &clone
	r.byUsername[normalize(clone.Username)] = clone.ID
}

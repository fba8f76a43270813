package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

// DefaultSessionTTL is used when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// Service exposes user bounded context use cases.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	now        func() time.Time
	newID      func() string
}

// Option customizes the service.
type Option func(*Service)

// WithSessionTTL overrides how long issued tokens stay valid.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(s.newID(), input.Username, input.Password)
	if err != nil {
		return nil, mapError(err)
	}
	if err := user.UpdateProfile(input.FirstName, input.LastName, input.Email, input.Phone); err != nil {
		return nil, mapError(err)
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	session := ports.Session{
		Token:     strings.ReplaceAll(s.newID()+s.newID(), "-", ""),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &ports.LoginResult{Token: session.Token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	session, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	if !session.ExpiresAt.After(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, mapError(ports.ErrSessionNotFound)
	}
	user, err := s.repo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrSessionNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, input ports.ProfileInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	firstName, lastName, email, phone := user.FirstName, user.LastName, user.Email, user.Phone
	if input.FirstName != nil {
		firstName = *input.FirstName
	}
	if input.LastName != nil {
		lastName = *input.LastName
	}
	if input.Email != nil {
		email = *input.Email
	}
	if input.Phone != nil {
		phone = *input.Phone
	}
	if err := user.UpdateProfile(firstName, lastName, email, phone); err != nil {
		return nil, mapError(err)
	}
	if input.Password != nil {
		if err := user.SetPassword(*input.Password); err != nil {
			return nil, mapError(err)
		}
	}
	updated, err := s.repo.UpdateProfile(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

var _ ports.Service = (*Service)(nil)

package ports

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// Session binds a bearer token to a user until ExpiresAt.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// SessionStore abstracts session/token persistence.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Resolve(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	sessions sync.Map
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, session ports.Session) error {
	s.sessions.Store(session.Token, session)
	return nil
}

func (s *SessionStore) Resolve(_ context.Context, token string) (*ports.Session, error) {
	value, ok := s.sessions.Load(token)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	session := value.(ports.Session)
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.sessions.Delete(token)
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	now := s.now()
	var purged int64
	s.sessions.Range(func(key, value any) bool {
		if session := value.(ports.Session); !session.ExpiresAt.After(now) {
			s.sessions.Delete(key)
			purged++
		}
		return true
	})
	return purged, nil
}

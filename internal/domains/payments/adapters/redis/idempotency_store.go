// Package redis keeps payment idempotency keys in Redis with a TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
)

const (
	keyPrefix  = "idempotency:payments:"
	DefaultTTL = 24 * time.Hour
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore claims keys with SETNX so the first writer wins.
type IdempotencyStore struct {
	client *goredis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewIdempotencyStore(client *goredis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl, now: time.Now}
}

type storedRecord struct {
	RequestHash string    `json:"request_hash"`
	Token       string    `json:"transaction_id"`
	RedirectURL string    `json:"redirect_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get idempotency key: %w", err)
	}
	return decode(key, raw)
}

func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	payload, err := json.Marshal(storedRecord{
		RequestHash: record.RequestHash,
		Token:       record.Token,
		RedirectURL: record.RedirectURL,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	claimed, err := s.client.SetNX(ctx, keyPrefix+record.Key, payload, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx idempotency key: %w", err)
	}
	if claimed {
		record.CreatedAt, record.UpdatedAt = now, now
		return &record, nil
	}

	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// expired between SETNX and GET
		return s.Save(ctx, record)
	}
	if existing.RequestHash != record.RequestHash {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func decode(key string, raw []byte) (*ports.IdempotencyRecord, error) {
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &ports.IdempotencyRecord{
		Key:         key,
		RequestHash: stored.RequestHash,
		Token:       stored.Token,
		RedirectURL: stored.RedirectURL,
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.CreatedAt,
	}, nil
}

func (s *IdempotencyStore) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis idempotency store not configured")
	}
	return nil
}

//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/redis/redistest"
)

func TestIdempotencyStore_FirstWriterWins(t *testing.T) {
	client := redistest.Start(t)
	store := NewIdempotencyStore(client, time.Minute)
	ctx := context.Background()

	missing, err := store.Get(ctx, "u1:k1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "u1:k1", RequestHash: "h1", Token: "TXN1", RedirectURL: "https://gw/1"})
	require.NoError(t, err)
	assert.Equal(t, "TXN1", saved.Token)

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "u1:k1", RequestHash: "h1", Token: "TXN2", RedirectURL: "https://gw/2"})
	require.NoError(t, err)
	assert.Equal(t, "TXN1", again.Token)

	conflict, err := store.Save(ctx, ports.IdempotencyRecord{Key: "u1:k1", RequestHash: "h2", Token: "TXN3"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, "TXN1", conflict.Token)

	ttl, err := client.TTL(ctx, keyPrefix+"u1:k1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

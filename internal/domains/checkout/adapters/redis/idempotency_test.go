package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	"github.com/vuhk2k6/web-order-sub000/internal/shared/ids"
)

func getRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestIdempotencyStore_FirstClaimWins(t *testing.T) {
	client := getRedisClient(t)
	store := NewIdempotencyStore(client, WithTTL(time.Minute))
	ctx := context.Background()
	key := "test-" + ids.New()
	t.Cleanup(func() { _ = store.Delete(ctx, key) })

	first, err := store.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: "h1", OrderID: "a"})
	require.NoError(t, err)
	require.Equal(t, "a", first.OrderID)

	second, err := store.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: "h1", OrderID: "b"})
	require.NoError(t, err)
	require.Equal(t, "a", second.OrderID)

	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: "h2", OrderID: "c"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestIdempotencyStore_DeleteReleasesKey(t *testing.T) {
	client := getRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()
	key := "test-" + ids.New()

	_, err := store.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: "h", OrderID: "a"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, key))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.Nil(t, got)
}

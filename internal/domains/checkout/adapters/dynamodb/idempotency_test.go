package dynamodb

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
)

// fakeTable implements the conditional put the store relies on.
type fakeTable struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeTable) PutItem(_ context.Context, in *dyn.PutItemInput, _ ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := in.Item["idempotency_key"].(*types.AttributeValueMemberS).Value
	if existing, ok := f.items[key]; ok {
		now, _ := strconv.ParseInt(in.ExpressionAttributeValues[":now"].(*types.AttributeValueMemberN).Value, 10, 64)
		expires, _ := strconv.ParseInt(existing["expires_at"].(*types.AttributeValueMemberN).Value, 10, 64)
		if expires >= now {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	f.items[key] = in.Item
	return &dyn.PutItemOutput{}, nil
}

func (f *fakeTable) GetItem(_ context.Context, in *dyn.GetItemInput, _ ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := in.Key["idempotency_key"].(*types.AttributeValueMemberS).Value
	return &dyn.GetItemOutput{Item: f.items[key]}, nil
}

func (f *fakeTable) DeleteItem(_ context.Context, in *dyn.DeleteItemInput, _ ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, in.Key["idempotency_key"].(*types.AttributeValueMemberS).Value)
	return &dyn.DeleteItemOutput{}, nil
}

func TestIdempotencyStore_Save(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(newFakeTable(), "checkout-idempotency", time.Hour)

	first, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h", OrderID: "a"})
	require.NoError(t, err)
	require.Equal(t, "a", first.OrderID)

	replay, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h", OrderID: "b"})
	require.NoError(t, err)
	require.Equal(t, "a", replay.OrderID)

	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "other", OrderID: "c"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestIdempotencyStore_ExpiredKeyCanBeReclaimed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore(newFakeTable(), "checkout-idempotency", time.Minute)
	store.now = func() time.Time { return now }

	_, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h", OrderID: "a"})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, got)

	rec, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h2", OrderID: "b"})
	require.NoError(t, err)
	require.Equal(t, "b", rec.OrderID)
}

func TestIdempotencyStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(newFakeTable(), "checkout-idempotency", time.Hour)
	_, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h", OrderID: "a"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "k"))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, got)
}

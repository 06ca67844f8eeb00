package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newIdempotencyStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, time.Hour), mr
}

func TestIdempotencyStoreRejectsReplays(t *testing.T) {
	store, mr := newIdempotencyStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "abc", "ledger"))
	err := store.CheckAndInsert(ctx, "abc", "ledger")
	require.ErrorIs(t, err, ErrIdempotencyConflict)
	require.ErrorIs(t, err, ErrConflict)

	require.NoError(t, store.CheckAndInsert(ctx, "abc", "jobs"))
	require.True(t, mr.Exists("idempotency:ledger:abc"))

	mr.FastForward(2 * time.Hour)
	require.NoError(t, store.CheckAndInsert(ctx, "abc", "ledger"))
}

func TestIdempotencyStoreDeleteReleasesKey(t *testing.T) {
	store, _ := newIdempotencyStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "k", "ledger"))
	require.NoError(t, store.Delete(ctx, "k", "ledger"))
	require.NoError(t, store.CheckAndInsert(ctx, "k", "ledger"))
}

func TestIdempotencyStoreValidatesInput(t *testing.T) {
	store, _ := newIdempotencyStore(t)
	require.ErrorIs(t, store.CheckAndInsert(context.Background(), "", "ledger"), ErrValidation)
	require.Error(t, store.CheckAndInsert(context.Background(), "k", ""))

	var nilStore *IdempotencyStore
	require.Error(t, nilStore.CheckAndInsert(context.Background(), "k", "ledger"))
	require.NoError(t, nilStore.Delete(context.Background(), "k", "ledger"))
}

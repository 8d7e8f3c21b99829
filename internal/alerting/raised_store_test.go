package alerting

import (
	"context"
	"strconv"
	"testing"
	"time"

	"QuakeWatchAPI/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRaisedStore(t *testing.T) (*miniredis.Miniredis, *RaisedStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log, err := logger.New(logger.Config{Level: logger.ERROR, Mode: logger.MINIMAL})
	require.NoError(t, err)

	return mr, NewRaisedStore(client, 48*time.Hour, log)
}

func TestRaisedStoreMarkAndLoad(t *testing.T) {
	_, store := setupRaisedStore(t)
	ctx := context.Background()

	require.NoError(t, store.Mark(ctx, []string{"ev1-z1", "ev2-z1"}))

	ids, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Len(t, ids, 2)
	_, ok := ids["ev1-z1"]
	assert.True(t, ok)
	_, ok = ids["ev2-z1"]
	assert.True(t, ok)
}

func TestRaisedStoreMarkEmpty(t *testing.T) {
	_, store := setupRaisedStore(t)
	assert.NoError(t, store.Mark(context.Background(), nil))
}

func TestRaisedStoreExpiry(t *testing.T) {
	mr, store := setupRaisedStore(t)
	ctx := context.Background()

	stale := strconv.FormatInt(time.Now().Add(-72*time.Hour).UnixMilli(), 10)
	mr.HSet(raisedKey, "old-id", stale)
	require.NoError(t, store.Mark(ctx, []string{"fresh-id"}))

	ids, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	_, ok := ids["fresh-id"]
	assert.True(t, ok)

	store.Cleanup(ctx)

	entries, err := mr.HKeys(raisedKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh-id"}, entries)
}

func TestRaisedStoreHealth(t *testing.T) {
	mr, store := setupRaisedStore(t)

	assert.NoError(t, store.Health(context.Background()))

	mr.Close()
	assert.Error(t, store.Health(context.Background()))
}

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "booking:b1", snapshot{ID: "b1", Amount: 50}, time.Minute))

	var got snapshot
	require.NoError(t, c.Get(ctx, "booking:b1", &got))
	assert.Equal(t, snapshot{ID: "b1", Amount: 50}, got)

	require.NoError(t, c.Delete(ctx, "booking:b1"))
	assert.ErrorIs(t, c.Get(ctx, "booking:b1", &got), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))

	now = now.Add(2 * time.Second)
	var got string
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestMemoryCacheSweepsExpiredEntriesOnSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	for i := 0; i < 10000; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("booking:%d", i), i, time.Minute))
	}
	require.NoError(t, c.Set(ctx, "oauth_state:keep", "google", 0))
	assert.Equal(t, 10001, c.Len())

	now = now.Add(24 * time.Hour)
	require.NoError(t, c.Set(ctx, "booking:new", 1, time.Minute))

	assert.Equal(t, 2, c.Len())
	var state string
	require.NoError(t, c.Get(ctx, "oauth_state:keep", &state))
	assert.Equal(t, "google", state)
}

func TestMemoryCacheSweepIsRateLimited(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	c.lastSweep = now

	require.NoError(t, c.Set(ctx, "a", 1, time.Second))
	now = now.Add(2 * time.Second)
	require.NoError(t, c.Set(ctx, "b", 1, time.Second))
	assert.Equal(t, 2, c.Len(), "no sweep before the interval elapses")

	now = now.Add(sweepInterval)
	require.NoError(t, c.Set(ctx, "c", 1, time.Minute))
	assert.Equal(t, 1, c.Len())
}

func TestCacheImplementations(t *testing.T) {
	var _ Cache = (*RedisCache)(nil)
	var _ Cache = (*MemoryCache)(nil)
}

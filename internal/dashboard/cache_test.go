package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesAndHits(t *testing.T) {
	ctx := context.Background()
	cache := testCache(t)

	key, err := cache.BuildKey(ctx, "sales")
	require.NoError(t, err)
	require.Equal(t, "dashboard:sales:1", key)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"orders": 4}, nil
	}

	var first map[string]int
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.Equal(t, 4, first["orders"])
	require.Equal(t, 1, calls)

	var second map[string]int
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	require.Equal(t, 4, second["orders"])
	require.Equal(t, 1, calls, "second fetch must come from cache")
}

func TestCacheBumpInvalidates(t *testing.T) {
	ctx := context.Background()
	cache := testCache(t)

	key, err := cache.BuildKey(ctx, "alerts")
	require.NoError(t, err)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return []string{"ok"}, nil
	}
	var out []string
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 1, calls)

	require.NoError(t, cache.Bump(ctx))

	bumped, err := cache.BuildKey(ctx, "alerts")
	require.NoError(t, err)
	require.NotEqual(t, key, bumped)

	require.NoError(t, cache.FetchJSON(ctx, bumped, &out, loader))
	require.Equal(t, 2, calls, "bumped version must miss the old payload")
}

func TestCacheNilClientPassThrough(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(nil, time.Minute)

	key, err := cache.BuildKey(ctx, "morning")
	require.NoError(t, err)
	require.Equal(t, "dashboard:morning", key)

	var out map[string]bool
	require.NoError(t, cache.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		return map[string]bool{"fresh": true}, nil
	}))
	require.True(t, out["fresh"])
	require.NoError(t, cache.Bump(ctx))
}

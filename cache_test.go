package flint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := NewMemoryCache()

	// Missing key is a nil, nil miss.
	data, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))
	data, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)

	require.NoError(t, cache.Delete(ctx, "k"))
	data, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMemoryCacheTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	data, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)

	time.Sleep(20 * time.Millisecond)
	data, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(ctx, "app:users:1", []byte("a"), 0))
	require.NoError(t, cache.Set(ctx, "app:users:2", []byte("b"), 0))
	require.NoError(t, cache.Set(ctx, "app:posts:1", []byte("c"), 0))

	require.NoError(t, cache.DeletePrefix(ctx, "app:users:"))

	data, _ := cache.Get(ctx, "app:users:1")
	assert.Nil(t, data)
	data, _ = cache.Get(ctx, "app:users:2")
	assert.Nil(t, data)
	data, _ = cache.Get(ctx, "app:posts:1")
	assert.Equal(t, []byte("c"), data)

	require.NoError(t, cache.Clear(ctx))
	data, _ = cache.Get(ctx, "app:posts:1")
	assert.Nil(t, data)
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	k1 := cacheKey("app", "users", "SELECT * FROM `users` WHERE `id` = ?", []any{1})
	k2 := cacheKey("app", "users", "SELECT * FROM `users` WHERE `id` = ?", []any{2})
	k3 := cacheKey("app", "users", "SELECT * FROM `users` WHERE `id` = ?", []any{1})

	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, k3)

	// Every key for a table shares the invalidation prefix.
	prefix := tablePrefix("app", "users")
	assert.True(t, len(k1) > len(prefix) && k1[:len(prefix)] == prefix)
	assert.NotContains(t, cacheKey("app", "posts", "q", nil), prefix)
}

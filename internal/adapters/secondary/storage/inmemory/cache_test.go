package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/raffle-bot/internal/ports/cache"
)

func TestCache_TTL(t *testing.T) {
	c := NewCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "session:1", "a", 50*time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", "b", 0))

	v, err := c.Get(ctx, "session:1")
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "session:1")
		return errors.Is(err, cache.ErrCacheMiss)
	}, time.Second, 10*time.Millisecond)

	ok, err := c.Exists(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)

	c.items.DeleteExpired()
	assert.Equal(t, 1, c.Len())
}

func TestCache_Delete(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Ping(ctx))

	require.NoError(t, c.Set(ctx, "k2", "v", time.Hour))
	assert.NoError(t, c.Close())
	assert.Zero(t, c.Len())
}

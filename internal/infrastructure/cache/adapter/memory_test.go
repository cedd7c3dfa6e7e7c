package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/cache/port"
)

func TestMemoryCache_TTL(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "lang:1", "ru", time.Hour))
	require.NoError(t, c.Set(ctx, "forever", "x", 0))

	v, err := c.Get(ctx, "lang:1")
	require.NoError(t, err)
	assert.Equal(t, "ru", v)

	now = now.Add(time.Hour)
	_, err = c.Get(ctx, "lang:1")
	assert.ErrorIs(t, err, port.ErrMiss)

	v, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	n, err := c.Del(ctx, "forever", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryCache_Sweep(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "2", time.Hour))
	now = now.Add(2 * time.Minute)

	assert.Equal(t, 1, c.Sweep())
	_, err := c.Get(ctx, "b")
	assert.NoError(t, err)
}

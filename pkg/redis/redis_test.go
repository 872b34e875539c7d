package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewFromClient(rdb, zap.NewNop()), mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONCache_RoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", payload{Name: "a", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, c.GetJSON(ctx, "k", &got))
	assert.Equal(t, payload{Name: "a", Count: 3}, got)
}

func TestJSONCache_MissAndExpiry(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	var got payload
	assert.ErrorIs(t, c.GetJSON(ctx, "absent", &got), ErrCacheMiss)

	require.NoError(t, c.SetJSON(ctx, "short", payload{Name: "b"}, time.Second))
	mr.FastForward(2 * time.Second)
	assert.ErrorIs(t, c.GetJSON(ctx, "short", &got), ErrCacheMiss)
}

func TestAllow_FixedWindow(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		ok, n, err := c.Allow(ctx, "agent:u1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(i), n)
	}

	ok, _, err := c.Allow(ctx, "agent:u1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// other keys have their own window
	ok, _, err = c.Allow(ctx, "agent:u2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(61 * time.Second)
	ok, n, err := c.Allow(ctx, "agent:u1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), n)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type snapshot struct {
	Adherence int      `json:"adherence"`
	Reasons   []string `json:"reasons"`
}

func newRedisCache(t *testing.T, ttl time.Duration) (*DashboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDashboardCache(NewRedisKVStore(client), ttl, zap.NewNop()), mr
}

func TestDashboardCache_RoundTrip(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()

	var got snapshot
	hit, err := c.Get(ctx, "p1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Put(ctx, "p1", snapshot{Adherence: 50, Reasons: []string{"high fever detected"}}))
	assert.True(t, mr.Exists(DashboardKey("p1")))
	assert.Equal(t, time.Minute, mr.TTL(DashboardKey("p1")))

	hit, err = c.Get(ctx, "p1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 50, got.Adherence)

	c.Invalidate(ctx, "p1")
	assert.False(t, mr.Exists(DashboardKey("p1")))
}

func TestDashboardCache_Expires(t *testing.T) {
	c, mr := newRedisCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "p1", snapshot{Adherence: 100}))
	mr.FastForward(31 * time.Second)

	var got snapshot
	hit, err := c.Get(ctx, "p1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestDashboardCache_CorruptEntryDropped(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	require.NoError(t, mr.Set(DashboardKey("p1"), "{not json"))

	var got snapshot
	hit, err := c.Get(context.Background(), "p1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists(DashboardKey("p1")))
}

func TestDashboardCache_RedisDown(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	mr.Close()

	var got snapshot
	_, err := c.Get(context.Background(), "p1", &got)
	assert.Error(t, err)
	assert.NotPanics(t, func() { c.Invalidate(context.Background(), "p1") })
}

func TestDashboardCache_NilIsDisabled(t *testing.T) {
	var c *DashboardCache
	ctx := context.Background()

	hit, err := c.Get(ctx, "p1", &snapshot{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Put(ctx, "p1", snapshot{}))
	assert.NotPanics(t, func() { c.Invalidate(ctx, "p1") })
}

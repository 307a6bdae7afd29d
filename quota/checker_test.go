package quota

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, limit int) (*Checker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, Config{Limit: limit, Window: time.Hour, Prefix: "quota:test"}), mr
}

func TestCheckDecreasesRemaining(t *testing.T) {
	c, _ := newTestChecker(t, 3)
	ctx := context.Background()

	for i, want := range []int{2, 1, 0} {
		res, err := c.Check(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "check %d", i)
		assert.Equal(t, want, res.Remaining, "check %d", i)
	}
}

func TestCheckBlocksAtLimitWithoutMutation(t *testing.T) {
	c, mr := newTestChecker(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := c.Check(ctx, "u1")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	res, err := c.Check(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)

	// A denied check must not push the window forward or inflate the count.
	got, err := mr.Get("quota:test:u1")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestCheckSetsWindowOnFirstUse(t *testing.T) {
	c, mr := newTestChecker(t, 5)
	ctx := context.Background()

	_, err := c.Check(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("quota:test:u1"))

	// Later checks keep the original window.
	mr.FastForward(30 * time.Minute)
	_, err = c.Check(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, mr.TTL("quota:test:u1"))
}

func TestWindowLapseResetsCounter(t *testing.T) {
	c, mr := newTestChecker(t, 1)
	ctx := context.Background()

	res, err := c.Check(ctx, "u1")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = c.Check(ctx, "u1")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	mr.FastForward(time.Hour + time.Second)

	res, err = c.Check(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestGiveBackRefunds(t *testing.T) {
	c, _ := newTestChecker(t, 1)
	ctx := context.Background()

	res, err := c.Check(ctx, "u1")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = c.Check(ctx, "u1")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	require.NoError(t, c.GiveBack(ctx, "u1"))

	res, err = c.Check(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestKeysAreIndependent(t *testing.T) {
	c, _ := newTestChecker(t, 1)
	ctx := context.Background()

	res, err := c.Check(ctx, "u1")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = c.Check(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestCheckSurfacesRedisFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := New(client, Config{Limit: 1, Window: time.Hour, Prefix: "quota:test"})

	mr.Close()

	_, err := c.Check(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}

func TestUsage(t *testing.T) {
	c, _ := newTestChecker(t, 5)
	ctx := context.Background()

	n, err := c.Usage(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = c.Check(ctx, "u1")
	require.NoError(t, err)

	n, err = c.Usage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

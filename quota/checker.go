package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any Redis transport failure. Callers decide
// whether to fail open or closed.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Config holds quota tuning parameters for one metered operation.
type Config struct {
	// Limit is the number of uses allowed per window.
	Limit int

	// Window is the fixed-window length, anchored at the first use.
	Window time.Duration

	// Prefix namespaces the Redis keys, e.g. "quota:translate".
	Prefix string
}

// Result reports the outcome of a quota check.
type Result struct {
	Allowed   bool
	Remaining int
}

// Checker enforces a per-key usage quota backed by Redis counters.
type Checker struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a quota [Checker] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Checker {
	return &Checker{
		redis:  redisClient,
		config: cfg,
	}
}

// Check consumes one unit of quota for the key. When the counter is already
// at the limit the check is denied without touching the counter. Remaining
// counts uses left after this one.
func (c *Checker) Check(ctx context.Context, key string) (Result, error) {
	k := c.key(key)

	count, err := c.redis.Get(ctx, k).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return Result{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		count = 0
	}

	if count >= int64(c.config.Limit) {
		return Result{Allowed: false, Remaining: 0}, nil
	}

	count, err = c.redis.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: the window starts at the first use.
	if count == 1 {
		if err := c.redis.Expire(ctx, k, c.config.Window).Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	remaining := int64(c.config.Limit) - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: int(remaining)}, nil
}

// GiveBack refunds one previously consumed unit. Used when the metered
// operation fails after the quota was taken.
func (c *Checker) GiveBack(ctx context.Context, key string) error {
	if err := c.redis.Decr(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Usage returns the current counter for a key. Missing keys return zero.
func (c *Checker) Usage(ctx context.Context, key string) (int, error) {
	count, err := c.redis.Get(ctx, c.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (c *Checker) key(key string) string {
	return c.config.Prefix + ":" + key
}

package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every replica through Redis.
type RedisLimiter struct {
	client   *redis.Client
	limit    int
	interval time.Duration
	prefix   string
}

// NewRedisLimiter creates a Redis-backed limiter. Keys are stored under prefix.
func NewRedisLimiter(client *redis.Client, limit int, interval time.Duration, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{
		client:   client,
		limit:    limit,
		interval: interval,
		prefix:   prefix,
	}
}

func (l *RedisLimiter) key(k string) string {
	return fmt.Sprintf("%s:%s", l.prefix, k)
}

// Allow increments the counter for key and starts its expiry if it has none.
// INCR and EXPIRE NX run in one MULTI/EXEC, so a key never outlives a failed
// expiry: the next hit sets it again. EXPIRE NX needs Redis 7.0 or later.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	rk := l.key(key)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, rk)
		pipe.ExpireNX(ctx, rk, l.interval)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("rate limit: %w", err)
	}
	return newResult(int(incr.Val()), l.limit), nil
}

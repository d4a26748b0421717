package di

import (
	"github.com/redis/go-redis/v9"

	"auth_backend/internal/platform/config"
	"auth_backend/internal/shared/ratelimiter"
)

// NewRateLimiter creates the request limiter for the auth routes.
// If Redis is available, counters are shared through Redis.
// Otherwise, it falls back to an in-process limiter.
func NewRateLimiter(rdb *redis.Client, cfg config.RateLimit) ratelimiter.Limiter {
	if rdb != nil {
		return ratelimiter.NewRedisLimiter(rdb, cfg.Max, cfg.Window, "ratelimit:auth")
	}
	return ratelimiter.NewMemoryLimiter(cfg.Max, cfg.Window)
}

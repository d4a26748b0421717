// Package ratelimiter limits how many requests a client may make within a window.
package ratelimiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
}

// Limiter counts hits per key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a process-local token-bucket limiter, one bucket per key.
// A bucket holds limit tokens and refills completely over interval.
// Buckets are lost on restart and not shared between replicas.
type MemoryLimiter struct {
	limit     int
	interval  time.Duration
	every     rate.Limit
	now       func() time.Time
	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

// NewMemoryLimiter creates a limiter allowing limit hits per key every interval.
func NewMemoryLimiter(limit int, interval time.Duration) *MemoryLimiter {
	if limit < 1 {
		limit = 1
	}
	return &MemoryLimiter{
		limit:    limit,
		interval: interval,
		every:    rate.Every(interval / time.Duration(limit)),
		now:      time.Now,
		buckets:  make(map[string]*bucket),
	}
}

// Allow takes a token from key's bucket and reports whether one was available.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.every, l.limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.lim.AllowN(now, 1)
	remaining := int(b.lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: allowed, Limit: l.limit, Remaining: remaining}, nil
}

// sweep drops buckets idle for a whole interval, at most once per interval.
// Such a bucket has refilled completely, so dropping it changes nothing.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for k, b := range l.buckets {
		if !now.Before(b.lastSeen.Add(l.interval)) {
			delete(l.buckets, k)
		}
	}
	l.nextSweep = now.Add(l.interval)
}

func newResult(count, limit int) Result {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: count <= limit, Limit: limit, Remaining: remaining}
}

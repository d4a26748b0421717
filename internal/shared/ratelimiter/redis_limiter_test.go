package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectHit(mock redismock.ClientMock, key string, window time.Duration, count int64) {
	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(count)
	mock.ExpectExpireNX(key, window).SetVal(count == 1)
	mock.ExpectTxPipelineExec()
}

func TestRedisLimiter_CountsWithinWindow(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	l := NewRedisLimiter(db, 2, 15*time.Minute, "")

	expectHit(mock, "ratelimit:1.2.3.4", 15*time.Minute, 1)
	expectHit(mock, "ratelimit:1.2.3.4", 15*time.Minute, 2)
	expectHit(mock, "ratelimit:1.2.3.4", 15*time.Minute, 3)

	want := []Result{
		{Allowed: true, Limit: 2, Remaining: 1},
		{Allowed: true, Limit: 2, Remaining: 0},
		{Allowed: false, Limit: 2, Remaining: 0},
	}
	for i, w := range want {
		res, err := l.Allow(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, w, res, "hit %d", i+1)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLimiter_ExpirySetAgainAfterFailure(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	l := NewRedisLimiter(db, 1, time.Minute, "auth")

	mock.ExpectTxPipeline()
	mock.ExpectIncr("auth:k").SetVal(1)
	mock.ExpectExpireNX("auth:k", time.Minute).SetErr(errors.New("connection reset"))
	mock.ExpectTxPipelineExec()
	// Every later hit still asks for an expiry, so the key cannot be left without a TTL.
	expectHit(mock, "auth:k", time.Minute, 2)
	expectHit(mock, "auth:k", time.Minute, 3)

	_, err := l.Allow(context.Background(), "k")
	require.Error(t, err)

	for i := 0; i < 2; i++ {
		res, err := l.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLimiter_IncrFails(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	l := NewRedisLimiter(db, 2, time.Minute, "")
	mock.ExpectTxPipeline()
	mock.ExpectIncr("ratelimit:k").SetErr(errors.New("connection refused"))
	mock.ExpectExpireNX("ratelimit:k", time.Minute).SetVal(false)
	mock.ExpectTxPipelineExec()

	_, err := l.Allow(context.Background(), "k")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

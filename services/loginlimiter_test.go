package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginLimiter(client, LoginLimiterConfig{MaxAttempts: 3, Cooldown: time.Minute}), mr
}

func TestLoginLimiter_Throttles(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Check(ctx, "m@x.com"))
		require.NoError(t, l.RecordFailure(ctx, "M@x.com"))
	}
	assert.ErrorIs(t, l.Check(ctx, "m@x.com"), ErrLoginThrottled)
	assert.NoError(t, l.Check(ctx, "l@x.com"))
	assert.Equal(t, time.Minute, mr.TTL(loginKey("m@x.com")))

	mr.FastForward(time.Minute + time.Second)
	assert.NoError(t, l.Check(ctx, "m@x.com"))
}

func TestLoginLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.RecordFailure(ctx, "m@x.com"))
	}
	require.NoError(t, l.Reset(ctx, "m@x.com"))
	assert.NoError(t, l.Check(ctx, "m@x.com"))
	assert.False(t, mr.Exists(loginKey("m@x.com")))
}

func TestLoginLimiter_Unavailable(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t)
	mr.Close()

	assert.ErrorIs(t, l.Check(ctx, "m@x.com"), ErrLimiterUnavailable)
	assert.ErrorIs(t, l.RecordFailure(ctx, "m@x.com"), ErrLimiterUnavailable)
	assert.ErrorIs(t, l.Reset(ctx, "m@x.com"), ErrLimiterUnavailable)
}

func TestLoginLimiter_Nil(t *testing.T) {
	ctx := context.Background()
	var l *LoginLimiter
	assert.NoError(t, l.Check(ctx, "m@x.com"))
	assert.NoError(t, l.RecordFailure(ctx, "m@x.com"))
	assert.NoError(t, l.Reset(ctx, "m@x.com"))
}

func TestNewLoginLimiter_Defaults(t *testing.T) {
	l := NewLoginLimiter(nil, LoginLimiterConfig{})
	assert.Equal(t, 5, l.cfg.MaxAttempts)
	assert.Equal(t, 15*time.Minute, l.cfg.Cooldown)
}

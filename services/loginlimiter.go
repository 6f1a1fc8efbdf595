package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrLoginThrottled     = errors.New("too many failed login attempts, retry later")
	ErrLimiterUnavailable = errors.New("login limiter unavailable")
)

type LoginLimiterConfig struct {
	MaxAttempts int
	Cooldown    time.Duration
}

// LoginLimiter counts failed logins per e-mail in a fixed Redis window. A nil
// *LoginLimiter allows every attempt.
type LoginLimiter struct {
	redis redis.Cmdable
	cfg   LoginLimiterConfig
}

func NewLoginLimiter(client redis.Cmdable, cfg LoginLimiterConfig) *LoginLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Minute
	}
	return &LoginLimiter{redis: client, cfg: cfg}
}

func loginKey(email string) string {
	return "ezwallet:login:" + strings.ToLower(email)
}

func (l *LoginLimiter) Check(ctx context.Context, email string) error {
	if l == nil || l.redis == nil {
		return nil
	}
	count, err := l.redis.Get(ctx, loginKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if count >= int64(l.cfg.MaxAttempts) {
		return ErrLoginThrottled
	}
	return nil
}

func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	if l == nil || l.redis == nil {
		return nil
	}
	key := loginKey(email)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	// window starts with the first failure
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.cfg.Cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if l == nil || l.redis == nil {
		return nil
	}
	if err := l.redis.Del(ctx, loginKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return nil
}

package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed logins per identifier in Redis.
// Key format: login:fail:<identifier>
//
// The counter's TTL is set on the first failure, so a burst of failures
// locks the identifier out for at most lockout from the first one.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int64
	lockout     time.Duration
}

// NewLoginLimiter returns a limiter that blocks an identifier once it has
// maxAttempts failures inside lockout. maxAttempts <= 0 disables throttling.
func NewLoginLimiter(client *redis.Client, maxAttempts int, lockout time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, maxAttempts: int64(maxAttempts), lockout: lockout}
}

func (l *LoginLimiter) Blocked(ctx context.Context, identifier string) (bool, error) {
	if l.disabled() {
		return false, nil
	}
	n, err := l.client.Get(ctx, l.key(identifier)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login throttle check: %w", err)
	}
	return n >= l.maxAttempts, nil
}

func (l *LoginLimiter) RecordFailure(ctx context.Context, identifier string) error {
	if l.disabled() {
		return nil
	}
	key := l.key(identifier)

	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("login throttle record: %w", err)
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, identifier string) error {
	if l.disabled() {
		return nil
	}
	return l.client.Del(ctx, l.key(identifier)).Err()
}

func (l *LoginLimiter) disabled() bool {
	return l.client == nil || l.maxAttempts <= 0
}

func (l *LoginLimiter) key(identifier string) string {
	return "login:fail:" + strings.ToLower(strings.TrimSpace(identifier))
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter locks an email out after maxFailures failed logins within the
// lockout window.
// Key format: login:failures:<email>, login:lock:<email>
type LoginLimiter struct {
	client      *redis.Client
	maxFailures int64
	lockout     time.Duration
}

func NewLoginLimiter(client *redis.Client, maxFailures int, lockout time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, maxFailures: int64(maxFailures), lockout: lockout}
}

// Allow reports whether email may attempt a login and, if not, for how long
// it stays locked.
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, time.Duration, error) {
	ttl, err := l.client.TTL(ctx, lockKey(email)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("login limiter: %w", err)
	}
	// TTL is negative when the key does not exist.
	if ttl > 0 {
		return false, ttl, nil
	}
	return true, 0, nil
}

func (l *LoginLimiter) Success(ctx context.Context, email string) error {
	return l.client.Del(ctx, failuresKey(email), lockKey(email)).Err()
}

// Failure counts a failed attempt and locks the email once the limit is hit.
func (l *LoginLimiter) Failure(ctx context.Context, email string) error {
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, failuresKey(email))
	pipe.Expire(ctx, failuresKey(email), l.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}

	if l.maxFailures > 0 && incr.Val() >= l.maxFailures {
		pipe := l.client.TxPipeline()
		pipe.Set(ctx, lockKey(email), "1", l.lockout)
		pipe.Del(ctx, failuresKey(email))
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("login limiter: %w", err)
		}
	}
	return nil
}

func failuresKey(email string) string { return "login:failures:" + email }
func lockKey(email string) string     { return "login:lock:" + email }

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultAttempts = 10
	defaultWindow   = time.Minute
)

// LoginLimiter is a fixed-window counter over Redis that caps login
// attempts per identifier and source address. It protects the expensive
// password-hash verification from online brute forcing.
// Key format: login_attempts:<identifier>:<ip>
type LoginLimiter struct {
	client   *redis.Client
	attempts int
	window   time.Duration
}

// NewLoginLimiter creates a limiter allowing attempts tries per window.
// Non-positive values fall back to the defaults.
func NewLoginLimiter(client *redis.Client, attempts int, window time.Duration) *LoginLimiter {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginLimiter{client: client, attempts: attempts, window: window}
}

// Allow counts one attempt and reports whether it is within the limit.
// A Redis failure fails open: authentication availability is preferred
// over throttling precision, and the error is returned for logging.
func (l *LoginLimiter) Allow(ctx context.Context, identifier, ip string) (bool, error) {
	key := l.key(identifier, ip)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return true, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count <= int64(l.attempts), nil
}

// Reset clears the window for identifier+ip, used after a successful
// login so legitimate users are not penalized by earlier typos.
func (l *LoginLimiter) Reset(ctx context.Context, identifier, ip string) error {
	return l.client.Del(ctx, l.key(identifier, ip)).Err()
}

func (l *LoginLimiter) key(identifier, ip string) string {
	return fmt.Sprintf("login_attempts:%s:%s", identifier, ip)
}

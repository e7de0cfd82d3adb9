package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindow increments the window counter and starts its expiry on the
// first hit. Returns the count and the remaining window in milliseconds.
var fixedWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// RedisLimiter is a fixed-window limiter shared by every instance pointing
// at the same Redis.
type RedisLimiter struct {
	client    *redis.Client
	rates     map[string]Rate
	keyPrefix string
}

// NewRedisLimiter builds a RedisLimiter. keyPrefix defaults to "throttle:".
func NewRedisLimiter(client *redis.Client, rates map[string]Rate, keyPrefix string) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = "throttle:"
	}
	return &RedisLimiter{client: client, rates: rates, keyPrefix: keyPrefix}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, scope, key string) (Decision, error) {
	rate, ok := l.rates[scope]
	if !ok {
		return Decision{Allowed: true}, nil
	}

	res, err := fixedWindow.Run(ctx, l.client, []string{bucketKey(l.keyPrefix, scope, key)}, rate.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis check failed: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected redis reply %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if count > rate.Limit {
		if ttl < 0 {
			ttl = rate.Window
		}
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Remaining: rate.Limit - count}, nil
}

// Ping checks if the Redis connection is healthy.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

var _ Limiter = (*RedisLimiter)(nil)

package limiters

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/service/redis"
)

// KeyRateLimiter allows at most limit calls per key within each fixed window
type KeyRateLimiter struct {
	cache  *redis.Cache
	name   string
	limit  int64
	window time.Duration
}

func NewKeyRateLimiter(ctx context.Context, cache *redis.Cache, name string, limit int64, window time.Duration) *KeyRateLimiter {
	logger.For(ctx).WithFields(logrus.Fields{
		"limiter": name,
		"limit":   limit,
		"window":  window,
	}).Info("rate limiter configured")

	return &KeyRateLimiter{cache: cache, name: name, limit: limit, window: window}
}

// ForKey counts a call against key. It returns whether the call is allowed and, if not, how long
// until the window resets.
func (k *KeyRateLimiter) ForKey(ctx context.Context, key string) (bool, time.Duration, error) {
	rlKey := k.cache.Key(fmt.Sprintf("%s:%s", k.name, key))
	client := k.cache.Client()

	count, err := client.Incr(ctx, rlKey).Result()
	if err != nil {
		return false, 0, err
	}

	ttl, err := client.PTTL(ctx, rlKey).Result()
	if err != nil {
		return false, 0, err
	}

	// The first call in a window (or a key left without an expiry) starts the window
	if count == 1 || ttl < 0 {
		if err := client.PExpire(ctx, rlKey, k.window).Err(); err != nil {
			return false, 0, err
		}
		ttl = k.window
	}

	if count > k.limit {
		return false, ttl, nil
	}

	return true, 0, nil
}

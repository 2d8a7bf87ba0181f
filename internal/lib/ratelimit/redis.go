// Package ratelimit provides a Redis-backed store for Echo's rate limiter.
//
// Counters use a fixed window: one key per client per window, incremented
// with INCR and expired with the window, so every API instance sharing the
// Redis sees the same budget.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// KeyPrefix namespaces limiter keys in a shared Redis.
	KeyPrefix = "todo-api:ratelimit"

	// DefaultTimeout bounds a single Allow round trip.
	DefaultTimeout = 100 * time.Millisecond
)

// RedisStore implements echo's middleware.RateLimiterStore.
//
// When Redis cannot be reached the request is allowed (fail open) and the
// error is logged; a Redis outage must not take the API down with it.
type RedisStore struct {
	client  redis.Cmdable
	limit   int64
	window  time.Duration
	timeout time.Duration
	now     func() time.Time
	logger  *zerolog.Logger
}

// NewRedisStore allows limit requests per identifier per window.
func NewRedisStore(client redis.Cmdable, limit int, window time.Duration, logger *zerolog.Logger) *RedisStore {
	return &RedisStore{
		client:  client,
		limit:   int64(limit),
		window:  window,
		timeout: DefaultTimeout,
		now:     time.Now,
		logger:  logger,
	}
}

// Allow reports whether identifier still has budget in the current window.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.key(identifier)

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		if s.logger != nil {
			s.logger.Error().
				Err(err).
				Str("key", key).
				Msg("rate limit counter unavailable, allowing request")
		}
		return true, fmt.Errorf("rate limit counter: %w", err)
	}

	return count.Val() <= s.limit, nil
}

func (s *RedisStore) key(identifier string) string {
	windowStart := s.now().Truncate(s.window).Unix()
	return fmt.Sprintf("%s:%s:%d", KeyPrefix, identifier, windowStart)
}

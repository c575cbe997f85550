package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "contact:rate:"

// Limiter counts submissions per client in fixed windows stored in Redis.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewLimiter connects to Redis at addr. limit submissions are allowed per window.
func NewLimiter(ctx context.Context, addr string, limit int, window time.Duration) (*Limiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, limit, window), nil
}

func NewWithClient(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window}
}

// Allow records one submission of key and reports whether it is within the limit.
// The window is created together with the counter, so a key never outlives it.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	k := keyPrefix + key
	var (
		count *redis.IntCmd
		ttl   *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, l.window)
		count = pipe.Incr(ctx, k)
		ttl = pipe.TTL(ctx, k)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to count submission: %w", err)
	}

	// counters written without a window are given one
	if ttl.Val() == -1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate window: %w", err)
		}
	}
	return count.Val() <= int64(l.limit), nil
}

// Close closes the Redis connection
func (l *Limiter) Close() error {
	return l.client.Close()
}

// Package ratelimit counts requests per client IP in fixed Redis windows.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:ip"

// Limiter throttles requests per IP and purpose. A nil *Limiter allows
// everything, which is how rate limiting is switched off.
type Limiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

func NewLimiter(client *redis.Client, maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

// CheckIPRateLimitWithPurpose reports whether ip already used up its
// allowance for purpose in the current window
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	if l == nil {
		return false, nil
	}

	count, err := l.client.Get(ctx, key(ip, purpose)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	return count >= l.maxRequests, nil
}

// RecordIPRequestWithPurpose counts one request. The window starts with
// the first request and is not extended by later ones.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	if l == nil {
		return nil
	}

	k := key(ip, purpose)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("failed to record rate limit counter: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return nil
}

func key(ip, purpose string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, purpose, ip)
}

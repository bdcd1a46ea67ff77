// internal/utils/rate_limiter.go
package utils

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps the golang.org/x/time/rate limiter. A nil *RateLimiter
// never blocks, so callers can leave pacing unconfigured.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing eventsPerSecond with a burst of one.
// A non-positive rate returns nil (unlimited).
func NewRateLimiter(eventsPerSecond float64) *RateLimiter {
	if eventsPerSecond <= 0 {
		return nil
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), 1),
	}
}

// Wait blocks until the limiter allows the next event
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	return rl.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now
func (rl *RateLimiter) Allow() bool {
	if rl == nil {
		return true
	}
	return rl.limiter.Allow()
}

// Limit returns the configured events per second, 0 when unlimited
func (rl *RateLimiter) Limit() float64 {
	if rl == nil {
		return 0
	}
	return float64(rl.limiter.Limit())
}

package api

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"forecast-api/pkg/redis"
)

// Throttle blocks before an outgoing provider call until the call is allowed
type Throttle interface {
	Wait(ctx context.Context) error
}

// noopThrottle never blocks
type noopThrottle struct{}

// NewNoopThrottle returns a Throttle that lets every call through
func NewNoopThrottle() Throttle {
	return noopThrottle{}
}

func (noopThrottle) Wait(context.Context) error {
	return nil
}

// localThrottle is an in-process token bucket
type localThrottle struct {
	limiter *rate.Limiter
}

// NewLocalThrottle creates a token bucket throttle.
// rps can be fractional for less than one call per second; burst is the bucket size.
func NewLocalThrottle(rps float64, burst int) Throttle {
	if burst < 1 {
		burst = 1
	}
	return &localThrottle{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t *localThrottle) Wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return nil
}

// quotaThrottle shares a call budget between processes through Redis
type quotaThrottle struct {
	quota *redis.Quota
}

// NewQuotaThrottle creates a throttle backed by a Redis quota
func NewQuotaThrottle(quota *redis.Quota) Throttle {
	return &quotaThrottle{quota: quota}
}

func (t *quotaThrottle) Wait(ctx context.Context) error {
	if err := t.quota.Acquire(ctx); err != nil {
		return fmt.Errorf("provider quota %s: %w", t.quota.Key(), err)
	}
	return nil
}

package explore

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter enforces the inter-request politeness delay using a token
// bucket with a burst of 1: the first visit proceeds immediately and
// every subsequent visit waits out the configured delay.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a Limiter with delaySeconds between visits.
// A non-positive delay disables pacing.
func NewLimiter(delaySeconds float64) *Limiter {
	if delaySeconds <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(1.0/delaySeconds), 1)}
}

// Wait blocks until the next visit is allowed or the context is
// canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

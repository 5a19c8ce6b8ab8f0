package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// TokenBucketConfig configures a TokenBucket.
type TokenBucketConfig struct {
	// RequestsPerSecond is the refill rate.
	// Default: 1
	RequestsPerSecond float64

	// Burst is the number of dispatches admitted at once.
	// Default: 1
	Burst int
}

// TokenBucket admits operations as tokens become available. Unlike FIFO it
// does not wait for an operation to finish before admitting the next one.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a token bucket limiter.
func NewTokenBucket(config TokenBucketConfig) *TokenBucket {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 1
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}
}

// Execute waits for a token, then runs op on the caller's goroutine.
func (b *TokenBucket) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	return op(ctx)
}

// Allow reports whether a token is available now, consuming it if so.
func (b *TokenBucket) Allow() bool {
	return b.limiter.Allow()
}

// Burst returns the bucket size.
func (b *TokenBucket) Burst() int {
	return b.limiter.Burst()
}

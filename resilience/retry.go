package resilience

import (
	"context"
	"math"
	"time"
)

// jitterFraction bounds the additive jitter as a share of the backoff term.
const jitterFraction = 0.10

// RetryPolicy configures the retry engine.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero means a single attempt.
	MaxRetries int

	// BaseDelay is the delay before the first retry.
	// Default: 1s
	BaseDelay time.Duration

	// MaxDelay caps the exponential term before jitter is added.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential growth factor. Must exceed 1.
	// Default: 2.0
	Multiplier float64

	// RetryIf classifies a failure as retryable.
	// Default: DefaultRetryable
	RetryIf func(err error) bool

	// StrictMaxDelay clamps the delay to MaxDelay after jitter as well.
	// When false, jitter may push a delay up to 10% past MaxDelay.
	StrictMaxDelay bool

	// OnRetry is called before each backoff wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryPolicy returns three retries with 1s exponential backoff capped
// at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		RetryIf:    DefaultRetryable,
	}
}

// normalized returns p with defaults applied to unusable fields.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.Multiplier <= 1 {
		p.Multiplier = 2.0
	}
	if p.RetryIf == nil {
		p.RetryIf = DefaultRetryable
	}
	return p
}

// BaseBackoff returns the pre-jitter delay following the given 1-based attempt.
func (p RetryPolicy) BaseBackoff(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Backoff returns the jittered delay following the given attempt. u is a
// uniform sample in [0,1).
func (p RetryPolicy) Backoff(attempt int, u float64) time.Duration {
	base := p.BaseBackoff(attempt)
	delay := base + time.Duration(float64(base)*u*jitterFraction)
	if p.StrictMaxDelay {
		if maxDelay := p.normalized().MaxDelay; delay > maxDelay {
			delay = maxDelay
		}
	}
	return delay
}

// WithRetry invokes op until it succeeds, fails with an error policy.RetryIf
// rejects, or MaxRetries+1 attempts have failed.
//
// A rejected error is returned unchanged. Exhaustion returns an
// *ExhaustedError carrying the final error and the attempt count.
// Cancelling ctx during a backoff wait returns ctx.Err().
func WithRetry[T any](ctx context.Context, op Operation[T], policy RetryPolicy, opts ...Option) (T, error) {
	policy = policy.normalized()
	o := newOptions(opts)
	var zero T

	for attempt := 1; ; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}

		if !policy.RetryIf(err) {
			return zero, err
		}

		if attempt > policy.MaxRetries {
			return zero, &ExhaustedError{Attempts: attempt, Err: err}
		}

		delay := policy.Backoff(attempt, o.rand())
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err, delay)
		}

		timer := o.clock.NewTimer(delay, "resilience", "backoff")
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// Retry implements retry with backoff for error-only operations.
type Retry struct {
	policy RetryPolicy
	opts   []Option
}

// NewRetry creates a new retry handler.
func NewRetry(policy RetryPolicy, opts ...Option) *Retry {
	return &Retry{policy: policy.normalized(), opts: opts}
}

// Execute runs the operation with retry logic.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := WithRetry(ctx, Func(op), r.policy, r.opts...)
	return err
}

// Delay returns the pre-jitter wait that follows the given attempt.
func (r *Retry) Delay(attempt int) time.Duration {
	return r.policy.BaseBackoff(attempt)
}

// Policy returns the normalized retry policy.
func (r *Retry) Policy() RetryPolicy {
	return r.policy
}

package resilience

import (
	"context"
	"math/rand/v2"

	"github.com/coder/quartz"
)

// Operation is a unit of deferred work. Each call is an independent attempt;
// the core never resumes a previous invocation.
//
// The context is cancelled when the timeout guard disowns the call, so
// well-behaved operations should pass it to whatever they block on.
type Operation[T any] func(ctx context.Context) (T, error)

// Func adapts an error-only function to an Operation.
func Func(fn func(ctx context.Context) error) Operation[struct{}] {
	return func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}
}

// Option configures the runtime collaborators of the guards in this package.
type Option func(*options)

type options struct {
	clock quartz.Clock
	rand  func() float64
}

func newOptions(opts []Option) options {
	o := options{
		clock: quartz.NewReal(),
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		rand: rand.Float64,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock sets the clock used for deadlines and backoff waits.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithRand sets the uniform [0,1) source used for jitter.
func WithRand(fn func() float64) Option {
	return func(o *options) {
		if fn != nil {
			o.rand = fn
		}
	}
}

package resilience

import (
	"context"
	"time"
)

// TimeoutPolicy configures the timeout guard.
type TimeoutPolicy struct {
	// Duration bounds a single invocation. Zero disables the guard.
	Duration time.Duration

	// CancelOnExpiry cancels the operation's context when the deadline
	// elapses. The operation is disowned either way: a late result is
	// discarded.
	CancelOnExpiry bool
}

// DefaultTimeoutPolicy returns a 30 second guard that cancels on expiry.
func DefaultTimeoutPolicy() TimeoutPolicy {
	return TimeoutPolicy{
		Duration:       30 * time.Second,
		CancelOnExpiry: true,
	}
}

// Enabled reports whether the guard enforces a deadline.
func (p TimeoutPolicy) Enabled() bool {
	return p.Duration > 0
}

type outcome[T any] struct {
	value    T
	err      error
	panicked bool
	panicVal any
}

// WithTimeout runs op and races it against policy.Duration.
//
// If op finishes first its result is returned as is. If the deadline wins a
// *TimeoutError is returned and, when policy.CancelOnExpiry is set, op's
// context is cancelled. Cancellation of ctx itself returns ctx.Err().
// A panic raised by op before the deadline is re-raised on the caller's
// goroutine.
func WithTimeout[T any](ctx context.Context, op Operation[T], policy TimeoutPolicy, opts ...Option) (T, error) {
	if !policy.Enabled() {
		return op(ctx)
	}

	o := newOptions(opts)
	var zero T

	opCtx, cancel := context.WithCancel(ctx)

	// Buffered so a disowned operation never blocks on delivery.
	done := make(chan outcome[T], 1)

	go func() {
		defer cancel()
		var out outcome[T]
		defer func() {
			if r := recover(); r != nil {
				out.panicked = true
				out.panicVal = r
			}
			done <- out
		}()
		out.value, out.err = op(opCtx)
	}()

	timer := o.clock.NewTimer(policy.Duration, "resilience", "timeout")
	defer timer.Stop()

	select {
	case out := <-done:
		if out.panicked {
			panic(out.panicVal)
		}
		return out.value, out.err
	case <-timer.C:
		if policy.CancelOnExpiry {
			cancel()
		}
		return zero, &TimeoutError{Duration: policy.Duration}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Timeout wraps error-only operations with a deadline.
type Timeout struct {
	policy TimeoutPolicy
	opts   []Option
}

// NewTimeout creates a timeout guard. A zero Duration disables it.
func NewTimeout(policy TimeoutPolicy, opts ...Option) *Timeout {
	if policy.Duration < 0 {
		policy.Duration = 0
	}
	return &Timeout{policy: policy, opts: opts}
}

// Execute runs the operation with a timeout.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := WithTimeout(ctx, Func(op), t.policy, t.opts...)
	return err
}

// Policy returns the timeout policy.
func (t *Timeout) Policy() TimeoutPolicy {
	return t.policy
}

// ExecuteWithTimeout is a convenience function to run an operation with timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutPolicy{Duration: timeout, CancelOnExpiry: true}).Execute(ctx, op)
}

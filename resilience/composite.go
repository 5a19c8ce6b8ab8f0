package resilience

import "context"

// WithTimeoutAndRetry bounds every attempt with the timeout guard and lets
// the retry engine govern the attempts. A per-attempt timeout is retried only
// if retry.RetryIf accepts it; DefaultRetryable does.
func WithTimeoutAndRetry[T any](ctx context.Context, op Operation[T], retry RetryPolicy, timeout TimeoutPolicy, opts ...Option) (T, error) {
	guarded := func(ctx context.Context) (T, error) {
		return WithTimeout(ctx, op, timeout, opts...)
	}
	return WithRetry(ctx, guarded, retry, opts...)
}

// Guard returns op wrapped by whichever of retry and timeout are non-nil.
func Guard[T any](op Operation[T], retry *RetryPolicy, timeout *TimeoutPolicy, opts ...Option) Operation[T] {
	switch {
	case retry != nil && timeout != nil:
		r, t := *retry, *timeout
		return func(ctx context.Context) (T, error) {
			return WithTimeoutAndRetry(ctx, op, r, t, opts...)
		}
	case retry != nil:
		r := *retry
		return func(ctx context.Context) (T, error) {
			return WithRetry(ctx, op, r, opts...)
		}
	case timeout != nil:
		t := *timeout
		return func(ctx context.Context) (T, error) {
			return WithTimeout(ctx, op, t, opts...)
		}
	default:
		return op
	}
}

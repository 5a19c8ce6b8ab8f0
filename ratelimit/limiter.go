package ratelimit

import (
	"context"
	"errors"
)

// ErrLimiterClosed is returned for submissions made after Close.
var ErrLimiterClosed = errors.New("ratelimit: limiter closed")

// Limiter dispatches error-only operations under a rate bound.
//
// Execute must not return while op is running: once op has been called, its
// return happens before Execute returns.
type Limiter interface {
	Execute(ctx context.Context, op func(context.Context) error) error
}

// Do runs a typed operation through l and returns its result unmodified.
func Do[T any](ctx context.Context, l Limiter, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := l.Execute(ctx, func(ctx context.Context) error {
		var err error
		result, err = op(ctx)
		return err
	})
	return result, err
}

// Wrap returns a reusable throttling function bound to l.
func Wrap[T any](l Limiter) func(ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	return func(ctx context.Context, op func(context.Context) (T, error)) (T, error) {
		return Do(ctx, l, op)
	}
}

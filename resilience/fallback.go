package resilience

import (
	"context"
	"errors"
	"slices"
)

var (
	// ErrNoOperations is returned by Fallback for an empty chain.
	ErrNoOperations = errors.New("resilience: no operations to run")

	// ErrFallbackExhausted is matched by every FallbackError via errors.Is.
	ErrFallbackExhausted = errors.New("resilience: every fallback failed")
)

// DefaultFallbackMarkers extend DefaultRetryableMarkers with the failures
// that make a provider unusable for now but leave its alternates worth a try:
// rate limiting, quota exhaustion and internal server errors.
var DefaultFallbackMarkers = append(slices.Clone(DefaultRetryableMarkers), "429", "500", "quota")

var defaultFallbackClassifier = NewClassifier(DefaultFallbackMarkers...)

// DefaultFallback classifies err against DefaultFallbackMarkers.
func DefaultFallback(err error) bool {
	return defaultFallbackClassifier.Retryable(err)
}

// FallbackError is returned when every operation of a chain failed with an
// error that allowed moving on. Its message is the last error's message.
type FallbackError struct {
	// Errs holds one error per operation, in chain order.
	Errs []error
}

func (e *FallbackError) Error() string {
	return e.Errs[len(e.Errs)-1].Error()
}

func (e *FallbackError) Unwrap() []error {
	return e.Errs
}

// Is reports whether target is ErrFallbackExhausted.
func (e *FallbackError) Is(target error) bool {
	return target == ErrFallbackExhausted
}

// Fallback runs ops in order until one succeeds and returns its value and
// index. An error rejected by fallbackIf stops the chain and is returned
// unchanged with the index that produced it. A nil fallbackIf means
// DefaultFallback. A chain of one operation is that operation: its error is
// always returned unchanged.
//
// A cancelled ctx stops the chain before the next operation starts.
func Fallback[T any](ctx context.Context, ops []Operation[T], fallbackIf func(error) bool) (T, int, error) {
	var zero T
	if len(ops) == 0 {
		return zero, -1, ErrNoOperations
	}
	if fallbackIf == nil {
		fallbackIf = DefaultFallback
	}

	errs := make([]error, 0, len(ops))
	for i, op := range ops {
		if i > 0 {
			if err := ctx.Err(); err != nil {
				return zero, i - 1, err
			}
		}

		v, err := op(ctx)
		if err == nil {
			return v, i, nil
		}
		if len(ops) == 1 || !fallbackIf(err) {
			return zero, i, err
		}
		errs = append(errs, err)
	}
	return zero, len(ops) - 1, &FallbackError{Errs: errs}
}

package stats

import (
	"context"
	"errors"

	"github.com/coder/quartz"

	"github.com/jonwraymond/opcore/resilience"
)

// Track runs op, measures it on clock and records the outcome in a.
//
// The record counts as retried when the error reports more than one attempt
// and as timed out when the error is a resilience timeout. Successful calls
// that needed retries are not visible here; use TrackAttempts for those.
func Track[T any](ctx context.Context, a *Aggregator, clock quartz.Clock, op resilience.Operation[T]) (T, error) {
	return TrackAttempts(ctx, a, clock, func(ctx context.Context) (T, int, error) {
		v, err := op(ctx)
		return v, resilience.Attempts(err), err
	})
}

// TrackAttempts is Track for operations that report their own attempt count.
func TrackAttempts[T any](ctx context.Context, a *Aggregator, clock quartz.Clock, op func(context.Context) (T, int, error)) (T, error) {
	return TrackObserved(ctx, a, clock, func(ctx context.Context) (T, Observation, error) {
		v, attempts, err := op(ctx)
		return v, Observation{Attempts: attempts}, err
	})
}

// Observation is what an operation reports about its own execution.
type Observation struct {
	// Attempts counts invocations across every alternate.
	Attempts int
	// FallbackIndex is the alternate that produced the outcome.
	FallbackIndex int
}

// TrackObserved is Track for operations that report an Observation.
func TrackObserved[T any](ctx context.Context, a *Aggregator, clock quartz.Clock, op func(context.Context) (T, Observation, error)) (T, error) {
	if clock == nil {
		clock = quartz.NewReal()
	}

	start := clock.Now()
	v, obs, err := op(ctx)
	elapsed := clock.Since(start)

	a.Record(Request{
		Success:       err == nil,
		ResponseTime:  elapsed,
		WasRetried:    obs.Attempts > 1,
		WasTimedOut:   errors.Is(err, resilience.ErrTimeout),
		FallbackIndex: obs.FallbackIndex,
	})
	return v, err
}

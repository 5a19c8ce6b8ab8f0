package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/opcore/resilience"
)

// Options configures a batch run.
type Options struct {
	// MaxConcurrency bounds in-flight operations. Values below 1 or above
	// the batch size mean full parallelism.
	MaxConcurrency int

	// Retry wraps every item with the retry engine when set.
	Retry *resilience.RetryPolicy

	// Timeout bounds every attempt of every item when set.
	Timeout *resilience.TimeoutPolicy

	// Resilience passes clock and jitter options to the item wrappers.
	Resilience []resilience.Option

	// OnComplete is called after each item finishes, from the item's
	// goroutine.
	OnComplete func(index int, err error)
}

// Result is the outcome of one batch item.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the item succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Execute runs ops with at most opts.MaxConcurrency in flight and returns one
// Result per op, in input order. It returns only after every launched
// operation has finished.
//
// Item failures are wrapped in *ItemError. If ctx is cancelled while waiting
// for a slot, that item and every later item are recorded as failed with
// ctx.Err() and never invoked.
func Execute[T any](ctx context.Context, ops []resilience.Operation[T], opts Options) []Result[T] {
	results := make([]Result[T], len(ops))
	if len(ops) == 0 {
		return results
	}

	limit := opts.MaxConcurrency
	if limit < 1 || limit > len(ops) {
		limit = len(ops)
	}
	sem := semaphore.NewWeighted(int64(limit))

	var wg sync.WaitGroup
	for i, op := range ops {
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(ops); j++ {
				results[j].Err = &ItemError{Index: j, Err: err}
				notify(opts.OnComplete, j, results[j].Err)
			}
			break
		}

		guarded := resilience.Guard(op, opts.Retry, opts.Timeout, opts.Resilience...)

		wg.Add(1)
		go func(i int, op resilience.Operation[T]) {
			defer wg.Done()
			defer sem.Release(1)

			value, err := op(ctx)
			if err != nil {
				results[i].Err = &ItemError{Index: i, Err: err}
			} else {
				results[i].Value = value
			}
			notify(opts.OnComplete, i, results[i].Err)
		}(i, guarded)
	}

	wg.Wait()
	return results
}

func notify(fn func(int, error), index int, err error) {
	if fn != nil {
		fn(index, err)
	}
}

// Summary counts outcomes in a result set.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Summarize counts successes and failures in results.
func Summarize[T any](results []Result[T]) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}

// Values returns the values of successful items, in input order.
func Values[T any](results []Result[T]) []T {
	out := make([]T, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Value)
		}
	}
	return out
}

// Errors returns the item errors, in input order.
func Errors[T any](results []Result[T]) []error {
	var out []error
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r.Err)
		}
	}
	return out
}

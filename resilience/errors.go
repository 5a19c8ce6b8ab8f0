package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for resilience operations.
var (
	// ErrTimeout is matched by every TimeoutError via errors.Is.
	ErrTimeout = errors.New("resilience: operation timeout")

	// ErrMaxRetriesExceeded is matched by every ExhaustedError via errors.Is.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrCircuitOpen is returned without invoking the operation while a
	// breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")
)

// TimeoutError is returned by the timeout guard when the deadline elapses
// before the operation completes.
//
// The message always contains the word "timeout" so that substring based
// retry classifiers treat it as retryable.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("resilience: operation timeout after %s", e.Duration)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ExhaustedError is returned when a retryable failure persists through every
// allowed attempt. Its message is the last underlying error's message,
// unchanged.
type ExhaustedError struct {
	// Attempts is the total number of invocations made, including the first.
	Attempts int
	// Err is the error returned by the final attempt.
	Err error
}

func (e *ExhaustedError) Error() string {
	return e.Err.Error()
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMaxRetriesExceeded.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrMaxRetriesExceeded
}

// Attempts returns how many invocations produced err.
//
// Errors that did not come out of an exhausted retry loop report 1.
// A nil error reports 0.
func Attempts(err error) int {
	if err == nil {
		return 0
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		return exhausted.Attempts
	}
	return 1
}

// IsTimeout reports whether err was produced by an elapsed deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

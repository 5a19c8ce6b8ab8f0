package health

import "errors"

var (
	// ErrThresholdExceeded indicates a measured rate or backlog crossed its
	// critical threshold.
	ErrThresholdExceeded = errors.New("health: threshold exceeded")

	// ErrCheckTimeout indicates a health check did not finish in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates a checker was not found.
	ErrCheckerNotFound = errors.New("health: checker not found")
)

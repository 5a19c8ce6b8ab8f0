package health

import (
	"context"

	"github.com/jonwraymond/opcore/resilience"
)

// BreakerState exposes a circuit breaker's state.
type BreakerState interface {
	State() resilience.State
}

// NewBreakerChecker reports an open circuit as unhealthy and a probing one
// as degraded.
func NewBreakerChecker(name string, b BreakerState) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		state := b.State()
		details := map[string]any{"state": state.String()}

		switch state {
		case resilience.StateOpen:
			return Unhealthy("circuit open", resilience.ErrCircuitOpen).WithDetails(details)
		case resilience.StateHalfOpen:
			return Degraded("circuit half-open").WithDetails(details)
		}
		return Healthy("circuit closed").WithDetails(details)
	})
}

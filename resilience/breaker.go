package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects calls until ResetTimeout has passed.
	StateOpen
	// StateHalfOpen admits a limited number of trial calls.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerPolicy configures a circuit breaker.
type BreakerPolicy struct {
	// MaxFailures is the number of consecutive failures that opens the
	// circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before probing.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxRequests bounds concurrent trial calls.
	// Default: 1
	HalfOpenMaxRequests int

	// OnStateChange is called with the breaker lock held; it must not call
	// back into the breaker.
	OnStateChange func(from, to State)

	// IsFailure decides which errors count against the circuit.
	// Default: every non-nil error except context cancellation.
	IsFailure func(err error) bool
}

// Breaker stops calling a failing dependency for a cool-down period.
type Breaker struct {
	policy BreakerPolicy
	clock  quartz.Clock

	mu          sync.Mutex
	state       State
	failures    int
	openedAt    time.Time
	halfOpenRun int
}

// NewBreaker creates a closed circuit breaker.
func NewBreaker(policy BreakerPolicy, opts ...Option) *Breaker {
	if policy.MaxFailures <= 0 {
		policy.MaxFailures = 5
	}
	if policy.ResetTimeout <= 0 {
		policy.ResetTimeout = 30 * time.Second
	}
	if policy.HalfOpenMaxRequests <= 0 {
		policy.HalfOpenMaxRequests = 1
	}
	if policy.IsFailure == nil {
		policy.IsFailure = func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}
	}

	return &Breaker{
		policy: policy,
		clock:  newOptions(opts).clock,
	}
}

// WithBreaker runs op unless the circuit is open, in which case it returns
// ErrCircuitOpen without invoking op.
func WithBreaker[T any](ctx context.Context, b *Breaker, op Operation[T]) (T, error) {
	if err := b.admit(); err != nil {
		var zero T
		return zero, err
	}
	v, err := op(ctx)
	b.record(err)
	return v, err
}

// Execute runs an error-only operation through the breaker.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := WithBreaker(ctx, b, Func(op))
	return err
}

// State returns the current state, moving an expired open circuit to
// half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

// Reset closes the circuit and clears the failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionLocked(StateClosed)
	b.failures = 0
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.halfOpenRun >= b.policy.HalfOpenMaxRequests {
			return ErrCircuitOpen
		}
		b.halfOpenRun++
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := b.policy.IsFailure(err)

	switch b.state {
	case StateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.policy.MaxFailures {
			b.openLocked()
		}
	case StateHalfOpen:
		if failed {
			b.openLocked()
			return
		}
		b.failures = 0
		b.transitionLocked(StateClosed)
	}
}

func (b *Breaker) openLocked() {
	b.openedAt = b.clock.Now()
	b.transitionLocked(StateOpen)
}

func (b *Breaker) currentLocked() State {
	if b.state == StateOpen && b.clock.Since(b.openedAt) >= b.policy.ResetTimeout {
		b.transitionLocked(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transitionLocked(to State) {
	from := b.state
	b.state = to
	if to == StateHalfOpen {
		b.halfOpenRun = 0
	}
	if from != to && b.policy.OnStateChange != nil {
		b.policy.OnStateChange(from, to)
	}
}

package resilience

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrTimeout", ErrTimeout},
		{"ErrMaxRetriesExceeded", ErrMaxRetriesExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("%s is nil", tt.name)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s has empty message", tt.name)
			}
		})
	}
}

func TestTimeoutError(t *testing.T) {
	err := &TimeoutError{Duration: 1500 * time.Millisecond}

	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("Error() = %q, want it to mention timeout", err.Error())
	}
	if !strings.Contains(err.Error(), "1.5s") {
		t.Errorf("Error() = %q, want it to carry the duration", err.Error())
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("errors.Is(err, ErrTimeout) = false")
	}
	if errors.Is(err, ErrMaxRetriesExceeded) {
		t.Error("timeout must not match ErrMaxRetriesExceeded")
	}
}

func TestExhaustedError(t *testing.T) {
	cause := errors.New("503 overloaded")
	err := &ExhaustedError{Attempts: 3, Err: cause}

	if err.Error() != cause.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), cause.Error())
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() did not return the cause")
	}
	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Error("errors.Is(err, ErrMaxRetriesExceeded) = false")
	}
}

func TestAttempts(t *testing.T) {
	if got := Attempts(nil); got != 0 {
		t.Errorf("Attempts(nil) = %d, want 0", got)
	}
	if got := Attempts(errors.New("x")); got != 1 {
		t.Errorf("Attempts(plain) = %d, want 1", got)
	}
	if got := Attempts(&ExhaustedError{Attempts: 5, Err: errors.New("x")}); got != 5 {
		t.Errorf("Attempts(exhausted) = %d, want 5", got)
	}
}

package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWithTimeoutAndRetry_RetriesTimedOutAttempt(t *testing.T) {
	var attempts atomic.Int32

	got, err := WithTimeoutAndRetry(context.Background(), func(ctx context.Context) (string, error) {
		if attempts.Add(1) == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "second try", nil
	}, fastPolicy(2), TimeoutPolicy{Duration: 20 * time.Millisecond, CancelOnExpiry: true})

	if err != nil {
		t.Fatalf("WithTimeoutAndRetry() error = %v", err)
	}
	if got != "second try" {
		t.Errorf("WithTimeoutAndRetry() = %q, want %q", got, "second try")
	}
	if n := attempts.Load(); n != 2 {
		t.Errorf("attempts = %d, want 2", n)
	}
}

func TestWithTimeoutAndRetry_TimeoutNotRetriedWithoutMarker(t *testing.T) {
	var attempts atomic.Int32

	policy := fastPolicy(3)
	policy.RetryIf = RetryableIf("503")

	_, err := WithTimeoutAndRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts.Add(1)
		<-ctx.Done()
		return 0, ctx.Err()
	}, policy, TimeoutPolicy{Duration: 10 * time.Millisecond, CancelOnExpiry: true})

	if !IsTimeout(err) {
		t.Fatalf("error = %v, want timeout", err)
	}
	if errors.Is(err, ErrMaxRetriesExceeded) {
		t.Error("a rejected timeout must not be reported as exhaustion")
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestWithTimeoutAndRetry_ExhaustsOnRepeatedTimeouts(t *testing.T) {
	var attempts atomic.Int32

	_, err := WithTimeoutAndRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts.Add(1)
		<-ctx.Done()
		return 0, ctx.Err()
	}, fastPolicy(2), TimeoutPolicy{Duration: 5 * time.Millisecond, CancelOnExpiry: true})

	if Attempts(err) != 3 {
		t.Errorf("Attempts(err) = %d, want 3", Attempts(err))
	}
	if !IsTimeout(err) {
		t.Errorf("error = %v, want the final timeout", err)
	}
	if n := attempts.Load(); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
}

func TestGuard(t *testing.T) {
	failing := func(calls *int) Operation[int] {
		return func(ctx context.Context) (int, error) {
			*calls++
			return 0, errors.New("503")
		}
	}
	retry := fastPolicy(1)
	timeout := TimeoutPolicy{Duration: time.Second}

	tests := []struct {
		name      string
		retry     *RetryPolicy
		timeout   *TimeoutPolicy
		wantCalls int
	}{
		{"bare", nil, nil, 1},
		{"timeout only", nil, &timeout, 1},
		{"retry only", &retry, nil, 2},
		{"retry and timeout", &retry, &timeout, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			op := Guard(failing(&calls), tt.retry, tt.timeout)

			if _, err := op(context.Background()); err == nil {
				t.Fatal("want error")
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

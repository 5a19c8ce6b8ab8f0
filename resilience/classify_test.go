package resilience

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

type codeError struct {
	code string
}

func (e *codeError) Error() string { return "request failed" }
func (e *codeError) Code() string  { return e.code }

type statusError struct {
	status int
}

func (e *statusError) Error() string   { return "upstream error" }
func (e *statusError) StatusCode() int { return e.status }

func TestDefaultRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"503 in message", errors.New("HTTP 503 Service Unavailable"), true},
		{"502 in message", errors.New("502 Bad Gateway"), true},
		{"504 in message", errors.New("status 504"), true},
		{"timeout any case", errors.New("Request TIMEOUT"), true},
		{"network", errors.New("Network error while uploading"), true},
		{"econnreset lower case", errors.New("read tcp: econnreset"), true},
		{"etimedout", errors.New("connect ETIMEDOUT 10.0.0.1:443"), true},
		{"timeout error", &TimeoutError{Duration: time.Second}, true},
		{"wrapped timeout error", fmt.Errorf("generate: %w", &TimeoutError{Duration: time.Second}), true},
		{"code ETIMEDOUT", &codeError{code: "ETIMEDOUT"}, true},
		{"wrapped code", fmt.Errorf("upload: %w", &codeError{code: "econnreset"}), true},
		{"status 502", &statusError{status: 502}, true},
		{"status 400", &statusError{status: 400}, false},
		{"bad request", errors.New("400 invalid argument"), false},
		{"insufficient credits", errors.New("insufficient credits"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryable(tt.err); got != tt.want {
				t.Errorf("DefaultRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryableIf(t *testing.T) {
	retryIf := RetryableIf("rate limit", "", "429")

	if !retryIf(errors.New("Rate Limit reached")) {
		t.Error("want rate limit retryable")
	}
	if !retryIf(&statusError{status: 429}) {
		t.Error("want status 429 retryable")
	}
	if retryIf(errors.New("503")) {
		t.Error("503 is not one of the custom markers")
	}
	if retryIf(&TimeoutError{Duration: time.Second}) {
		t.Error("timeout must not match without a timeout marker")
	}
}

func TestClassifier_Markers(t *testing.T) {
	c := NewClassifier("ECONNRESET", "", "Timeout")

	got := c.Markers()
	want := []string{"econnreset", "timeout"}
	if len(got) != len(want) {
		t.Fatalf("Markers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Markers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	got[0] = "mutated"
	if c.Markers()[0] != "econnreset" {
		t.Error("Markers() exposed internal state")
	}
}

package resilience

import (
	"context"
	"errors"
	"testing"
)

func failing(msg string, calls *int) Operation[string] {
	return func(ctx context.Context) (string, error) {
		*calls++
		return "", errors.New(msg)
	}
}

func serving(v string, calls *int) Operation[string] {
	return func(ctx context.Context) (string, error) {
		*calls++
		return v, nil
	}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name      string
		chain     func(calls []int) []Operation[string]
		want      string
		wantIndex int
		wantErr   string
		wantCalls []int
	}{
		{
			name: "primary serves",
			chain: func(calls []int) []Operation[string] {
				return []Operation[string]{serving("gemini", &calls[0]), serving("openrouter", &calls[1])}
			},
			want: "gemini", wantIndex: 0, wantCalls: []int{1, 0},
		},
		{
			name: "quota moves to alternate",
			chain: func(calls []int) []Operation[string] {
				return []Operation[string]{failing("429 quota exceeded", &calls[0]), serving("openrouter", &calls[1])}
			},
			want: "openrouter", wantIndex: 1, wantCalls: []int{1, 1},
		},
		{
			name: "unavailable skips two",
			chain: func(calls []int) []Operation[string] {
				return []Operation[string]{
					failing("503 unavailable", &calls[0]),
					failing("500 internal", &calls[1]),
					serving("haiku", &calls[2]),
				}
			},
			want: "haiku", wantIndex: 2, wantCalls: []int{1, 1, 1},
		},
		{
			name: "non-matching error stops the chain",
			chain: func(calls []int) []Operation[string] {
				return []Operation[string]{failing("400 prompt rejected", &calls[0]), serving("openrouter", &calls[1])}
			},
			wantIndex: 0, wantErr: "400 prompt rejected", wantCalls: []int{1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := make([]int, len(tt.wantCalls))
			got, idx, err := Fallback(context.Background(), tt.chain(calls), nil)

			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Errorf("Fallback() error = %v, want %q", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("Fallback() error = %v", err)
			}
			if got != tt.want || idx != tt.wantIndex {
				t.Errorf("Fallback() = %q, %d, want %q, %d", got, idx, tt.want, tt.wantIndex)
			}
			for i, n := range tt.wantCalls {
				if calls[i] != n {
					t.Errorf("op %d called %d times, want %d", i, calls[i], n)
				}
			}
		})
	}
}

func TestFallback_AllFail(t *testing.T) {
	var a, b int
	_, idx, err := Fallback(context.Background(), []Operation[string]{
		failing("503 unavailable", &a),
		failing("429 too many requests", &b),
	}, nil)

	if !errors.Is(err, ErrFallbackExhausted) {
		t.Fatalf("Fallback() error = %v, want ErrFallbackExhausted", err)
	}
	if err.Error() != "429 too many requests" {
		t.Errorf("Error() = %q, want the last failure", err.Error())
	}
	if idx != 1 {
		t.Errorf("index = %d, want 1", idx)
	}
	var fe *FallbackError
	if !errors.As(err, &fe) || len(fe.Errs) != 2 {
		t.Errorf("FallbackError = %+v, want both failures", fe)
	}
}

func TestFallback_UnwrapsToEachFailure(t *testing.T) {
	first := &TimeoutError{}
	_, _, err := Fallback(context.Background(), []Operation[int]{
		func(ctx context.Context) (int, error) { return 0, first },
		func(ctx context.Context) (int, error) { return 0, errors.New("network down") },
	}, nil)

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("errors.Is(err, ErrTimeout) = false for %v", err)
	}
}

func TestFallback_Empty(t *testing.T) {
	_, idx, err := Fallback[string](context.Background(), nil, nil)
	if !errors.Is(err, ErrNoOperations) || idx != -1 {
		t.Errorf("Fallback(nil) = %d, %v, want -1, ErrNoOperations", idx, err)
	}
}

func TestFallback_CustomPredicate(t *testing.T) {
	var a, b int
	got, idx, err := Fallback(context.Background(), []Operation[string]{
		failing("model deprecated", &a),
		serving("claude", &b),
	}, RetryableIf("deprecated"))

	if err != nil || got != "claude" || idx != 1 {
		t.Errorf("Fallback() = %q, %d, %v", got, idx, err)
	}
}

func TestFallback_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var b int
	_, idx, err := Fallback(ctx, []Operation[string]{
		func(ctx context.Context) (string, error) {
			cancel()
			return "", errors.New("503 unavailable")
		},
		serving("openrouter", &b),
	}, nil)

	if !errors.Is(err, context.Canceled) || idx != 0 {
		t.Errorf("Fallback() = %d, %v, want 0, context.Canceled", idx, err)
	}
	if b != 0 {
		t.Error("alternate ran after cancellation")
	}
}

func TestFallback_SingleOperationErrorUnchanged(t *testing.T) {
	opErr := errors.New("503 unavailable")
	_, idx, err := Fallback(context.Background(), []Operation[int]{
		func(ctx context.Context) (int, error) { return 0, opErr },
	}, nil)

	if err != opErr || idx != 0 {
		t.Errorf("Fallback() = %d, %v, want 0 and the original error", idx, err)
	}
}

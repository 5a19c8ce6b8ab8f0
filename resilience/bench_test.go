package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func BenchmarkWithRetry_Success(b *testing.B) {
	ctx := context.Background()
	policy := DefaultRetryPolicy()
	op := func(ctx context.Context) (int, error) { return 1, nil }

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = WithRetry(ctx, op, policy)
	}
}

func BenchmarkWithTimeout_Success(b *testing.B) {
	ctx := context.Background()
	policy := TimeoutPolicy{Duration: time.Second}
	op := func(ctx context.Context) (int, error) { return 1, nil }

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = WithTimeout(ctx, op, policy)
	}
}

func BenchmarkDefaultRetryable(b *testing.B) {
	err := errors.New("dial tcp 10.0.0.1:443: connect: ETIMEDOUT")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = DefaultRetryable(err)
	}
}

func BenchmarkRetryPolicy_Backoff(b *testing.B) {
	policy := DefaultRetryPolicy()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = policy.Backoff(i%8+1, 0.5)
	}
}

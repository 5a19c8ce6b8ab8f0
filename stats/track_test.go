package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"

	"github.com/jonwraymond/opcore/resilience"
)

func TestTrack_MeasuresOnClock(t *testing.T) {
	mClock := quartz.NewMock(t)
	a := newTestAggregator(t)

	got, err := Track(context.Background(), a, mClock, func(ctx context.Context) (string, error) {
		mClock.Advance(250 * time.Millisecond)
		return "done", nil
	})
	if err != nil || got != "done" {
		t.Fatalf("Track() = %q, %v", got, err)
	}

	s := a.Stats()
	if s.Total != 1 || s.Successful != 1 {
		t.Errorf("counters = %+v", s)
	}
	if s.TotalResponseTime != 250*time.Millisecond {
		t.Errorf("TotalResponseTime = %v, want 250ms", s.TotalResponseTime)
	}
}

func TestTrack_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantRetried bool
		wantTimeout bool
	}{
		{"plain", errors.New("bad request"), false, false},
		{"timeout", &resilience.TimeoutError{Duration: time.Second}, false, true},
		{"exhausted", &resilience.ExhaustedError{Attempts: 3, Err: errors.New("503")}, true, false},
		{"exhausted timeout", &resilience.ExhaustedError{Attempts: 2, Err: &resilience.TimeoutError{Duration: time.Second}}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAggregator(t)
			_, err := Track(context.Background(), a, nil, func(ctx context.Context) (int, error) {
				return 0, tt.err
			})
			if err != tt.err {
				t.Fatalf("Track() error = %v, want original", err)
			}

			s := a.Stats()
			if s.Failed != 1 {
				t.Errorf("Failed = %d, want 1", s.Failed)
			}
			if (s.Retried == 1) != tt.wantRetried {
				t.Errorf("Retried = %d, want retried=%v", s.Retried, tt.wantRetried)
			}
			if (s.TimedOut == 1) != tt.wantTimeout {
				t.Errorf("TimedOut = %d, want timed out=%v", s.TimedOut, tt.wantTimeout)
			}
		})
	}
}

func TestTrackAttempts_RetriedSuccess(t *testing.T) {
	a := newTestAggregator(t)

	_, err := TrackAttempts(context.Background(), a, nil, func(ctx context.Context) (int, int, error) {
		return 1, 2, nil
	})
	if err != nil {
		t.Fatalf("TrackAttempts() error = %v", err)
	}
	if s := a.Stats(); s.Successful != 1 || s.Retried != 1 {
		t.Errorf("counters = %+v", s)
	}
}

func TestTrackObserved_CountsFallback(t *testing.T) {
	a := newTestAggregator(t)

	_, _ = TrackObserved(context.Background(), a, nil, func(ctx context.Context) (string, Observation, error) {
		return "openrouter", Observation{Attempts: 2, FallbackIndex: 1}, nil
	})
	_, _ = TrackObserved(context.Background(), a, nil, func(ctx context.Context) (string, Observation, error) {
		return "gemini", Observation{Attempts: 1}, nil
	})

	s := a.Stats()
	if s.Total != 2 || s.FellBack != 1 || s.Retried != 1 {
		t.Errorf("counters = %+v", s)
	}
	if !approx(s.FallbackRate, 50) {
		t.Errorf("FallbackRate = %v, want 50", s.FallbackRate)
	}
}

package stats

import (
	"context"
	"sync"
	"time"
)

// Request describes one completed operation.
type Request struct {
	Success      bool
	ResponseTime time.Duration
	WasRetried   bool
	WasTimedOut  bool

	// FallbackIndex is the position of the alternate that produced the
	// outcome; zero for the primary.
	FallbackIndex int
}

// Snapshot is a point-in-time view of an Aggregator.
type Snapshot struct {
	Total      int64
	Successful int64
	Failed     int64
	Retried    int64
	TimedOut   int64
	FellBack   int64

	TotalResponseTime   time.Duration
	AverageResponseTime time.Duration

	// Rates are percentages in [0, 100]; zero when Total is zero.
	// FallbackRate is the share served or failed by an alternate.
	SuccessRate  float64
	FailureRate  float64
	RetryRate    float64
	TimeoutRate  float64
	FallbackRate float64
}

// AverageResponseTimeMs returns the mean response time in milliseconds.
func (s Snapshot) AverageResponseTimeMs() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.TotalResponseTime) / float64(time.Millisecond) / float64(s.Total)
}

// Aggregator accumulates request records. It is safe for concurrent use.
type Aggregator struct {
	mu         sync.Mutex
	total      int64
	successful int64
	failed     int64
	retried    int64
	timedOut   int64
	fellBack   int64
	totalTime  time.Duration

	inst *instruments
}

// Option configures an Aggregator.
type Option func(*Aggregator) error

// New creates an Aggregator.
func New(opts ...Option) (*Aggregator, error) {
	a := &Aggregator{}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// RecordRequest records one completed operation.
func (a *Aggregator) RecordRequest(success bool, responseTime time.Duration, wasRetried, wasTimedOut bool) {
	a.Record(Request{
		Success:      success,
		ResponseTime: responseTime,
		WasRetried:   wasRetried,
		WasTimedOut:  wasTimedOut,
	})
}

// Record records one completed operation.
func (a *Aggregator) Record(r Request) {
	if r.ResponseTime < 0 {
		r.ResponseTime = 0
	}

	a.mu.Lock()
	a.total++
	if r.Success {
		a.successful++
	} else {
		a.failed++
	}
	if r.WasRetried {
		a.retried++
	}
	if r.WasTimedOut {
		a.timedOut++
	}
	if r.FallbackIndex > 0 {
		a.fellBack++
	}
	a.totalTime += r.ResponseTime
	a.mu.Unlock()

	if a.inst != nil {
		a.inst.record(context.Background(), r)
	}
}

// Stats returns the current counters and derived rates.
func (a *Aggregator) Stats() Snapshot {
	a.mu.Lock()
	s := Snapshot{
		Total:             a.total,
		Successful:        a.successful,
		Failed:            a.failed,
		Retried:           a.retried,
		TimedOut:          a.timedOut,
		FellBack:          a.fellBack,
		TotalResponseTime: a.totalTime,
	}
	a.mu.Unlock()

	if s.Total == 0 {
		return s
	}
	s.AverageResponseTime = s.TotalResponseTime / time.Duration(s.Total)
	s.SuccessRate = percent(s.Successful, s.Total)
	s.FailureRate = percent(s.Failed, s.Total)
	s.RetryRate = percent(s.Retried, s.Total)
	s.TimeoutRate = percent(s.TimedOut, s.Total)
	s.FallbackRate = percent(s.FellBack, s.Total)
	return s
}

// Reset zeroes all counters. Mirrored OTel instruments are cumulative and
// are not affected.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total, a.successful, a.failed, a.retried, a.timedOut, a.fellBack = 0, 0, 0, 0, 0, 0
	a.totalTime = 0
}

func percent(n, total int64) float64 {
	return float64(n) / float64(total) * 100
}

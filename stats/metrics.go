package stats

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metric names for mirrored records.
const (
	MetricRequestsTotal    = "opcore.requests.total"
	MetricRequestsFailed   = "opcore.requests.failed"
	MetricRequestsRetried  = "opcore.requests.retried"
	MetricRequestsTimedOut = "opcore.requests.timed_out"
	MetricRequestsFellBack = "opcore.requests.fell_back"
	MetricRequestDuration  = "opcore.requests.duration_ms"
)

type instruments struct {
	total    metric.Int64Counter
	failed   metric.Int64Counter
	retried  metric.Int64Counter
	timedOut metric.Int64Counter
	fellBack metric.Int64Counter
	duration metric.Float64Histogram
}

// WithMeter mirrors every record into OTel instruments created from meter.
func WithMeter(meter metric.Meter) Option {
	return func(a *Aggregator) error {
		inst, err := newInstruments(meter)
		if err != nil {
			return err
		}
		a.inst = inst
		return nil
	}
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	total, err := meter.Int64Counter(MetricRequestsTotal,
		metric.WithDescription("Total number of recorded requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter(MetricRequestsFailed,
		metric.WithDescription("Number of failed requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	retried, err := meter.Int64Counter(MetricRequestsRetried,
		metric.WithDescription("Number of requests that needed a retry"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	timedOut, err := meter.Int64Counter(MetricRequestsTimedOut,
		metric.WithDescription("Number of requests that timed out"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	fellBack, err := meter.Int64Counter(MetricRequestsFellBack,
		metric.WithDescription("Number of requests handled by an alternate operation"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Request response time in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &instruments{
		total:    total,
		failed:   failed,
		retried:  retried,
		timedOut: timedOut,
		fellBack: fellBack,
		duration: duration,
	}, nil
}

func (i *instruments) record(ctx context.Context, r Request) {
	i.total.Add(ctx, 1)
	if !r.Success {
		i.failed.Add(ctx, 1)
	}
	if r.WasRetried {
		i.retried.Add(ctx, 1)
	}
	if r.WasTimedOut {
		i.timedOut.Add(ctx, 1)
	}
	if r.FallbackIndex > 0 {
		i.fellBack.Add(ctx, 1)
	}
	i.duration.Record(ctx, float64(r.ResponseTime)/float64(time.Millisecond))
}

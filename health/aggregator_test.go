package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixed(name string, status Status) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return Result{Status: status, Message: status.String()}
	})
}

func TestAggregator_RegisterOrder(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(fixed("stats", StatusHealthy))
	agg.Register(fixed("queue", StatusHealthy))
	agg.Register(fixed("stats", StatusDegraded))

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "stats" || names[1] != "queue" {
		t.Errorf("CheckerNames() = %v, want [stats queue]", names)
	}

	got, err := agg.Check(context.Background(), "stats")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if got.Status != StatusDegraded {
		t.Errorf("Status = %v, want the replacement checker's status", got.Status)
	}
}

func TestAggregator_CheckNotFound(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(fixed("a", StatusHealthy))
	agg.Register(fixed("b", StatusDegraded))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results["b"].Status != StatusDegraded {
		t.Errorf("b = %v, want degraded", results["b"].Status)
	}
	if results["a"].Timestamp.IsZero() {
		t.Error("Timestamp not filled in")
	}
}

func TestAggregator_CheckAllTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register(NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(200 * time.Millisecond)
		return Healthy("late")
	}))

	got := agg.CheckAll(context.Background())["slow"]
	if got.Status != StatusUnhealthy || !errors.Is(got.Error, ErrCheckTimeout) {
		t.Errorf("slow = %+v, want unhealthy with ErrCheckTimeout", got)
	}
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", map[string]Result{"a": {Status: StatusHealthy}}, StatusHealthy},
		{"degraded", map[string]Result{"a": {Status: StatusHealthy}, "b": {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy wins", map[string]Result{"a": {Status: StatusUnhealthy}, "b": {Status: StatusDegraded}}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_Checker(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(fixed("stats", StatusHealthy))
	agg.Register(fixed("queue", StatusUnhealthy))

	c := agg.Checker("gemini")
	got := c.Check(context.Background())

	if c.Name() != "gemini" {
		t.Errorf("Name() = %q, want gemini", c.Name())
	}
	if got.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", got.Status)
	}
	if len(got.Details) != 2 {
		t.Errorf("Details = %v, want one entry per checker", got.Details)
	}
}

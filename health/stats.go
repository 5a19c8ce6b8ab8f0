package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/opcore/stats"
)

// StatsSource exposes an aggregated usage snapshot.
type StatsSource interface {
	Stats() stats.Snapshot
}

// StatsCheckerConfig configures a StatsChecker. Rates are percentages.
type StatsCheckerConfig struct {
	// Name identifies the checker.
	// Default: "stats"
	Name string

	// MinSamples is the number of records needed before rates are judged.
	// Default: 10
	MinSamples int64

	// FailureWarning degrades the status at or above this failure rate.
	// Default: 10
	FailureWarning float64

	// FailureCritical fails the check at or above this failure rate.
	// Default: 50
	FailureCritical float64

	// TimeoutWarning degrades the status at or above this timeout rate.
	// Default: 5
	TimeoutWarning float64

	// TimeoutCritical fails the check at or above this timeout rate.
	// Default: 25
	TimeoutCritical float64
}

// StatsChecker derives health from failure and timeout rates.
type StatsChecker struct {
	config StatsCheckerConfig
	source StatsSource
}

// NewStatsChecker creates a checker reading from source.
func NewStatsChecker(source StatsSource, config StatsCheckerConfig) *StatsChecker {
	if config.Name == "" {
		config.Name = "stats"
	}
	if config.MinSamples <= 0 {
		config.MinSamples = 10
	}
	config.FailureWarning, config.FailureCritical = thresholds(config.FailureWarning, config.FailureCritical, 10, 50)
	config.TimeoutWarning, config.TimeoutCritical = thresholds(config.TimeoutWarning, config.TimeoutCritical, 5, 25)

	return &StatsChecker{config: config, source: source}
}

func thresholds(warn, crit, defWarn, defCrit float64) (float64, float64) {
	if warn <= 0 || warn > 100 {
		warn = defWarn
	}
	if crit <= 0 || crit > 100 {
		crit = defCrit
	}
	if crit < warn {
		crit = warn
	}
	return warn, crit
}

// Name returns the configured checker name.
func (c *StatsChecker) Name() string {
	return c.config.Name
}

// Check judges the current snapshot against the thresholds.
func (c *StatsChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	s := c.source.Stats()
	details := map[string]any{
		"total":           s.Total,
		"failure_rate":    s.FailureRate,
		"timeout_rate":    s.TimeoutRate,
		"retry_rate":      s.RetryRate,
		"avg_response_ms": s.AverageResponseTimeMs(),
	}

	if s.Total < c.config.MinSamples {
		return Healthy(fmt.Sprintf("insufficient samples: %d", s.Total)).WithDetails(details)
	}

	switch {
	case s.FailureRate >= c.config.FailureCritical:
		return Unhealthy(fmt.Sprintf("failure rate critical: %.1f%%", s.FailureRate), ErrThresholdExceeded).WithDetails(details)
	case s.TimeoutRate >= c.config.TimeoutCritical:
		return Unhealthy(fmt.Sprintf("timeout rate critical: %.1f%%", s.TimeoutRate), ErrThresholdExceeded).WithDetails(details)
	case s.FailureRate >= c.config.FailureWarning:
		return Degraded(fmt.Sprintf("failure rate high: %.1f%%", s.FailureRate)).WithDetails(details)
	case s.TimeoutRate >= c.config.TimeoutWarning:
		return Degraded(fmt.Sprintf("timeout rate high: %.1f%%", s.TimeoutRate)).WithDetails(details)
	}

	return Healthy(fmt.Sprintf("failure rate normal: %.1f%%", s.FailureRate)).WithDetails(details)
}

package health

import (
	"context"
	"fmt"
)

// Backlog reports how many operations are waiting for dispatch.
type Backlog interface {
	Pending() int
}

// QueueCheckerConfig configures a QueueChecker.
type QueueCheckerConfig struct {
	// Name identifies the checker.
	// Default: "queue"
	Name string

	// Warning degrades the status when the backlog reaches it.
	// Default: 10
	Warning int

	// Critical fails the check when the backlog reaches it.
	// Default: 100
	Critical int
}

// QueueChecker derives health from a rate limiter backlog.
type QueueChecker struct {
	config  QueueCheckerConfig
	backlog Backlog
}

// NewQueueChecker creates a checker over backlog.
func NewQueueChecker(backlog Backlog, config QueueCheckerConfig) *QueueChecker {
	if config.Name == "" {
		config.Name = "queue"
	}
	if config.Warning <= 0 {
		config.Warning = 10
	}
	if config.Critical <= 0 {
		config.Critical = 100
	}
	if config.Critical < config.Warning {
		config.Critical = config.Warning
	}
	return &QueueChecker{config: config, backlog: backlog}
}

// Name returns the configured checker name.
func (c *QueueChecker) Name() string {
	return c.config.Name
}

// Check compares the backlog with the thresholds.
func (c *QueueChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	pending := c.backlog.Pending()
	details := map[string]any{"pending": pending}

	switch {
	case pending >= c.config.Critical:
		return Unhealthy(fmt.Sprintf("backlog critical: %d pending", pending), ErrThresholdExceeded).WithDetails(details)
	case pending >= c.config.Warning:
		return Degraded(fmt.Sprintf("backlog high: %d pending", pending)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("backlog normal: %d pending", pending)).WithDetails(details)
}

package health_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/opcore/health"
	"github.com/jonwraymond/opcore/stats"
)

func ExampleNewStatsChecker() {
	usage, _ := stats.New()
	for i := 0; i < 10; i++ {
		usage.RecordRequest(i < 8, 50*time.Millisecond, false, false)
	}

	checker := health.NewStatsChecker(usage, health.StatsCheckerConfig{})
	result := checker.Check(context.Background())

	fmt.Println(result.Status, "-", result.Message)
	// Output:
	// degraded - failure rate high: 20.0%
}

type queue struct{ pending int }

func (q queue) Pending() int { return q.pending }

func ExampleAggregator_CheckAll() {
	usage, _ := stats.New()

	agg := health.NewAggregator(health.AggregatorConfig{})
	agg.Register(health.NewStatsChecker(usage, health.StatsCheckerConfig{}))
	agg.Register(health.NewQueueChecker(queue{pending: 150}, health.QueueCheckerConfig{}))

	results := agg.CheckAll(context.Background())
	for _, name := range agg.CheckerNames() {
		fmt.Println(name, results[name].Status)
	}
	fmt.Println("overall:", health.OverallStatus(results))
	// Output:
	// stats healthy
	// queue unhealthy
	// overall: unhealthy
}

// Package health derives endpoint health from usage statistics and limiter
// backlog.
//
// StatsChecker judges failure and timeout rates once a minimum number of
// records has been seen. QueueChecker judges how many operations are waiting
// in a rate limiter. Aggregator runs a set of checkers concurrently and
// reduces them to the worst status:
//
//	agg := health.NewAggregator(health.AggregatorConfig{})
//	agg.Register(health.NewStatsChecker(usage, health.StatsCheckerConfig{}))
//	agg.Register(health.NewQueueChecker(limiter, health.QueueCheckerConfig{}))
//
//	results := agg.CheckAll(ctx)
//	overall := health.OverallStatus(results)
package health

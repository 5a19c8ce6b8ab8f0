// Package stats aggregates usage counters for executed operations.
//
// An Aggregator is owned by its caller; there is no package-level state.
// Each record carries the outcome, its response time, and whether it was
// retried or timed out. Stats derives rates as percentages and guards every
// division against an empty sample.
//
// Aggregators can mirror records into OpenTelemetry instruments with
// WithMeter, and Track times an operation and records it in one call.
package stats

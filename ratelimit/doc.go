// Package ratelimit throttles the dispatch of operations.
//
// FIFO is the default limiter: submissions queue in arrival order and a
// single drain loop dispatches one entry per interval, waiting for each to
// finish before the interval starts. It bounds dispatch rate, not
// concurrency of callers.
//
// TokenBucket is an opt-in alternative built on golang.org/x/time/rate that
// admits bursts and lets dispatched operations overlap.
//
// Both satisfy Limiter, so Do and Wrap work with either.
//
// Quota is a separate admission check: it bounds how many operations each
// key may run per calendar hour, day or month. A Reservation is cancelled
// when the admitted work fails, so only successes count.
package ratelimit

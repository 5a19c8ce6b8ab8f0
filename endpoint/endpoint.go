package endpoint

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/opcore/batch"
	"github.com/jonwraymond/opcore/health"
	"github.com/jonwraymond/opcore/observe"
	"github.com/jonwraymond/opcore/ratelimit"
	"github.com/jonwraymond/opcore/resilience"
	"github.com/jonwraymond/opcore/stats"
)

// Option configures an Endpoint.
type Option func(*settings)

type settings struct {
	observer observe.Observer
	clock    quartz.Clock
	rand     func() float64
}

// WithObserver routes spans, metrics and logs to obs.
func WithObserver(obs observe.Observer) Option {
	return func(s *settings) {
		if obs != nil {
			s.observer = obs
		}
	}
}

// WithClock sets the clock for timeouts, backoff, throttling and timing.
func WithClock(clock quartz.Clock) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithRand sets the jitter source of the retry engine.
func WithRand(fn func() float64) Option {
	return func(s *settings) {
		s.rand = fn
	}
}

// Endpoint bundles the policies, limiter, statistics and telemetry of one
// logical endpoint. It is safe for concurrent use.
type Endpoint struct {
	config  Config
	retry   *resilience.RetryPolicy
	timeout *resilience.TimeoutPolicy

	limiter ratelimit.Limiter
	fifo    *ratelimit.FIFO
	quota   *ratelimit.Quota
	breaker *resilience.Breaker

	fallbackIf func(error) bool

	usage  *stats.Aggregator
	mw     *observe.Middleware
	logger observe.Logger
	clock  quartz.Clock
	opts   []resilience.Option
	health *health.Aggregator
}

// New creates an Endpoint from a validated config.
func New(config Config, opts ...Option) (*Endpoint, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := settings{observer: observe.Discard(), clock: quartz.NewReal()}
	for _, opt := range opts {
		opt(&s)
	}

	mw, err := observe.MiddlewareFromObserver(s.observer)
	if err != nil {
		return nil, err
	}
	usage, err := stats.New(stats.WithMeter(s.observer.Meter()))
	if err != nil {
		return nil, err
	}

	ep := &Endpoint{
		config: config,
		usage:  usage,
		mw:     mw,
		logger: s.observer.Logger(),
		clock:  s.clock,
		opts:   []resilience.Option{resilience.WithClock(s.clock), resilience.WithRand(s.rand)},
	}
	ep.retry, ep.timeout = config.Policies()
	ep.fallbackIf = config.FallbackIf()

	if config.Quota.Limit > 0 {
		ep.quota, err = ratelimit.NewQuota(ratelimit.QuotaConfig{
			Limit:  config.Quota.Limit,
			Period: config.Quota.Period,
			Clock:  s.clock,
		})
		if err != nil {
			return nil, err
		}
	}

	if rps := config.RateLimit.RequestsPerSecond; rps > 0 {
		if config.RateLimit.Strategy == StrategyTokenBucket {
			ep.limiter = ratelimit.NewTokenBucket(ratelimit.TokenBucketConfig{
				RequestsPerSecond: rps,
				Burst:             config.RateLimit.Burst,
			})
		} else {
			ep.fifo = ratelimit.New(ratelimit.Config{
				RequestsPerSecond: rps,
				Clock:             s.clock,
				Logger:            ep.logger.WithOperation(observe.OperationMeta{Endpoint: config.Name}),
			})
			ep.limiter = ep.fifo
		}
	}

	if policy := config.BreakerPolicy(); policy != nil {
		logger := ep.logger.WithOperation(observe.OperationMeta{Endpoint: config.Name})
		policy.OnStateChange = func(from, to resilience.State) {
			logger.Warn(context.Background(), "circuit state changed",
				observe.F("from", from.String()),
				observe.F("to", to.String()),
			)
		}
		ep.breaker = resilience.NewBreaker(*policy, resilience.WithClock(s.clock))
	}

	ep.health = health.NewAggregator(health.AggregatorConfig{})
	ep.health.Register(health.NewStatsChecker(usage, health.StatsCheckerConfig{}))
	if ep.fifo != nil {
		ep.health.Register(health.NewQueueChecker(ep.fifo, health.QueueCheckerConfig{}))
	}
	if ep.breaker != nil {
		ep.health.Register(health.NewBreakerChecker("breaker", ep.breaker))
	}

	return ep, nil
}

// Name returns the endpoint name.
func (e *Endpoint) Name() string {
	return e.config.Name
}

// Config returns the endpoint's config.
func (e *Endpoint) Config() Config {
	return e.config
}

// Stats returns the endpoint's usage snapshot.
func (e *Endpoint) Stats() stats.Snapshot {
	return e.usage.Stats()
}

// ResetStats zeroes the endpoint's usage counters.
func (e *Endpoint) ResetStats() {
	e.usage.Reset()
}

// BreakerState returns the circuit state; StateClosed without a breaker.
func (e *Endpoint) BreakerState() resilience.State {
	if e.breaker == nil {
		return resilience.StateClosed
	}
	return e.breaker.State()
}

// Pending returns the rate limiter backlog; zero without a FIFO limiter.
func (e *Endpoint) Pending() int {
	if e.fifo == nil {
		return 0
	}
	return e.fifo.Pending()
}

// Quota returns the per-key admission quota; nil when disabled.
func (e *Endpoint) Quota() *ratelimit.Quota {
	return e.quota
}

// HealthChecker reports the endpoint's health from its usage statistics and
// limiter backlog.
func (e *Endpoint) HealthChecker() health.Checker {
	return e.health.Checker(e.config.Name)
}

// Close stops the limiter from accepting work. Queued work still runs.
func (e *Endpoint) Close() error {
	if e.fifo != nil {
		return e.fifo.Close()
	}
	return nil
}

// Do runs op through the endpoint: quota, rate limiter, then a span around
// the circuit breaker and the timeout and retry guards, then a usage record.
// The usage record covers the guarded call only, not time spent queued in the
// limiter. The breaker counts one outcome per Do call, after retries.
func Do[T any](ctx context.Context, e *Endpoint, name string, op resilience.Operation[T]) (T, error) {
	v, _, err := DoFallback(ctx, e, name, []resilience.Operation[T]{op})
	return v, err
}

// DoFallback is Do for an ordered list of alternates, such as the same
// request against a primary provider and its substitutes. Each alternate gets
// its own timeout and retry guards. A failure accepted by the endpoint's
// fallback predicate moves on to the next alternate; any other failure ends
// the call. The returned index is the alternate that produced the outcome,
// or -1 when none ran.
//
// The whole chain is one admission for the quota, the limiter and the
// breaker. A quota unit is refunded when the call fails.
func DoFallback[T any](ctx context.Context, e *Endpoint, name string, ops []resilience.Operation[T]) (T, int, error) {
	var zero T
	if len(ops) == 0 {
		return zero, -1, resilience.ErrNoOperations
	}
	meta := observe.OperationMeta{Endpoint: e.config.Name, Name: name}

	var reservation *ratelimit.Reservation
	if e.quota != nil {
		key := KeyFromContext(ctx)
		r, err := e.quota.Reserve(key)
		if err != nil {
			e.logger.WithOperation(meta).Warn(ctx, "quota exceeded",
				observe.F("key", key),
				observe.F("limit", e.quota.Limit()),
			)
			return zero, -1, err
		}
		reservation = r
	}

	var served atomic.Int32
	served.Store(-1)

	tracked := func(ctx context.Context) (T, error) {
		var attempts atomic.Int32

		instrumented := observe.Instrument(e.mw, meta, func(ctx context.Context) (T, error) {
			chain := guardChain(ctx, e, meta, ops, &attempts)
			run := func(ctx context.Context) (T, error) {
				v, i, err := resilience.Fallback(ctx, chain, e.fallbackIf)
				served.Store(int32(i))
				return v, err
			}
			if e.breaker == nil {
				return run(ctx)
			}
			return resilience.WithBreaker(ctx, e.breaker, run)
		})

		return stats.TrackObserved(ctx, e.usage, e.clock, func(ctx context.Context) (T, stats.Observation, error) {
			v, err := instrumented(ctx)
			return v, stats.Observation{
				Attempts:      int(attempts.Load()),
				FallbackIndex: max(int(served.Load()), 0),
			}, err
		})
	}

	var v T
	var err error
	if e.limiter == nil {
		v, err = tracked(ctx)
	} else {
		v, err = ratelimit.Do(ctx, e.limiter, tracked)
	}
	if err != nil && reservation != nil {
		reservation.Cancel()
	}
	return v, int(served.Load()), err
}

// guardChain guards every alternate and counts its invocations in attempts.
// Moving past the primary is logged and marked on the current span.
func guardChain[T any](ctx context.Context, e *Endpoint, meta observe.OperationMeta, ops []resilience.Operation[T], attempts *atomic.Int32) []resilience.Operation[T] {
	retry := e.retryFor(ctx, meta)
	logger := e.logger.WithOperation(meta)

	chain := make([]resilience.Operation[T], len(ops))
	for i, op := range ops {
		guarded := resilience.Guard(func(ctx context.Context) (T, error) {
			attempts.Add(1)
			return op(ctx)
		}, retry, e.timeout, e.opts...)

		if i == 0 {
			chain[i] = guarded
			continue
		}
		chain[i] = func(ctx context.Context) (T, error) {
			logger.Warn(ctx, "falling back", observe.F("index", i))
			observe.AddEvent(ctx, "fallback", attribute.Int("op.fallback_index", i))
			return guarded(ctx)
		}
	}
	return chain
}

// retryFor returns the endpoint retry policy with an OnRetry hook that logs
// the retry and marks it on the current span.
func (e *Endpoint) retryFor(ctx context.Context, meta observe.OperationMeta) *resilience.RetryPolicy {
	if e.retry == nil {
		return nil
	}

	p := *e.retry
	logger := e.logger.WithOperation(meta)
	p.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn(ctx, "retrying operation",
			observe.F("attempt", attempt),
			observe.F("delay_ms", delay.Milliseconds()),
			observe.F("error", err.Error()),
		)
		observe.AddEvent(ctx, "retry",
			attribute.Int("op.attempt", attempt),
			attribute.Int64("op.delay_ms", delay.Milliseconds()),
		)
	}
	return &p
}

// Batch runs ops through Do with the endpoint's batch concurrency bound and
// returns one result per op in input order.
func Batch[T any](ctx context.Context, e *Endpoint, name string, ops []resilience.Operation[T]) []batch.Result[T] {
	wrapped := make([]resilience.Operation[T], len(ops))
	for i, op := range ops {
		wrapped[i] = func(ctx context.Context) (T, error) {
			return Do(ctx, e, name, op)
		}
	}
	return batch.Execute(ctx, wrapped, batch.Options{MaxConcurrency: e.config.Batch.MaxConcurrency})
}

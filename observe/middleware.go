package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the untyped operation signature that Middleware wraps.
type ExecuteFunc func(ctx context.Context, meta OperationMeta) (any, error)

// Middleware wraps operation calls with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. Nil components are replaced by
// no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, meta OperationMeta) (any, error) {
		var result any
		err := m.observe(ctx, meta, func(ctx context.Context) error {
			var err error
			result, err = fn(ctx, meta)
			return err
		})
		return result, err
	}
}

// Instrument wraps a typed operation with tracing, metrics and logging.
func Instrument[T any](m *Middleware, meta OperationMeta, op func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var result T
		err := m.observe(ctx, meta, func(ctx context.Context) error {
			var err error
			result, err = op(ctx)
			return err
		})
		return result, err
	}
}

func (m *Middleware) observe(ctx context.Context, meta OperationMeta, fn func(context.Context) error) error {
	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, err)
	m.metrics.RecordExecution(ctx, meta, duration, err)

	opLogger := m.logger.WithOperation(meta)
	fields := []Field{
		F("duration_ms", float64(duration.Milliseconds())),
	}
	if err != nil {
		fields = append(fields, F("error", err.Error()))
		opLogger.Error(ctx, "operation failed", fields...)
	} else {
		opLogger.Debug(ctx, "operation completed", fields...)
	}

	return err
}

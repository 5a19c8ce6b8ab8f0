package ratelimit

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/jonwraymond/opcore/observe"
)

// Config configures a FIFO limiter.
type Config struct {
	// RequestsPerSecond sets the dispatch rate. The gap between dispatches
	// is 1s / RequestsPerSecond.
	// Default: 1
	RequestsPerSecond float64

	// Clock drives the interval waits.
	// Default: real clock
	Clock quartz.Clock

	// Logger receives debug records for skipped entries.
	// Default: no-op
	Logger observe.Logger
}

type entry struct {
	ctx      context.Context
	op       func(context.Context) error
	done     chan result
	dequeued bool // guarded by FIFO.mu
}

type result struct {
	err      error
	panicked bool
	panicVal any
}

// FIFO dispatches queued operations strictly in submission order, one per
// interval. It is Idle until the first submission, then Draining until the
// queue empties again.
type FIFO struct {
	interval time.Duration
	clock    quartz.Clock
	logger   observe.Logger

	mu       sync.Mutex
	queue    []*entry
	draining bool
	closed   bool
}

// New creates a FIFO limiter.
func New(config Config) *FIFO {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 1
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	return &FIFO{
		interval: time.Duration(float64(time.Second) / config.RequestsPerSecond),
		clock:    config.Clock,
		logger:   config.Logger,
	}
}

// Interval returns the gap enforced between dispatches.
func (l *FIFO) Interval() time.Duration {
	return l.interval
}

// Execute queues op and blocks until it has run, returning its error as is.
//
// If ctx is done while the entry is still queued, it is withdrawn and
// ctx.Err() returned. Once the entry has left the queue, Execute waits for
// its outcome even if ctx is done, so op never outlives the call. A panic in
// op is re-raised on the caller's goroutine.
func (l *FIFO) Execute(ctx context.Context, op func(context.Context) error) error {
	e := &entry{ctx: ctx, op: op, done: make(chan result, 1)}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLimiterClosed
	}
	l.queue = append(l.queue, e)
	if !l.draining {
		l.draining = true
		go l.drain()
	}
	l.mu.Unlock()

	var r result
	select {
	case r = <-e.done:
	case <-ctx.Done():
		if l.withdraw(e) {
			return ctx.Err()
		}
		r = <-e.done
	}
	if r.panicked {
		panic(r.panicVal)
	}
	return r.err
}

// withdraw removes e from the queue if the drain loop has not taken it yet.
func (l *FIFO) withdraw(e *entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e.dequeued {
		return false
	}
	if i := slices.Index(l.queue, e); i >= 0 {
		l.queue = slices.Delete(l.queue, i, i+1)
	}
	e.dequeued = true
	return true
}

// Pending returns the number of queued, undispatched entries.
func (l *FIFO) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Close rejects further submissions. Entries already queued still drain.
func (l *FIFO) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *FIFO) drain() {
	for {
		e, ok := l.next()
		if !ok {
			return
		}

		if err := e.ctx.Err(); err != nil {
			l.logger.Debug(e.ctx, "rate limiter skipped cancelled entry", observe.F("error", err.Error()))
			e.done <- result{err: err}
			continue
		}

		e.done <- dispatch(e)

		timer := l.clock.NewTimer(l.interval, "ratelimit", "interval")
		<-timer.C
	}
}

// next pops the queue head, or moves the limiter back to Idle.
func (l *FIFO) next() (*entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		l.draining = false
		return nil, false
	}
	e := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	e.dequeued = true
	return e, true
}

func dispatch(e *entry) (r result) {
	defer func() {
		if v := recover(); v != nil {
			r = result{panicked: true, panicVal: v}
		}
	}()
	return result{err: e.op(e.ctx)}
}

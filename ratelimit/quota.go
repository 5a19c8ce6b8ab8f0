package ratelimit

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/quartz"
)

// Quota periods. A window covers one calendar unit in UTC.
const (
	PeriodHour  = "hour"
	PeriodDay   = "day"
	PeriodMonth = "month"
)

var periodLayouts = map[string]string{
	PeriodHour:  "2006-01-02T15",
	PeriodDay:   "2006-01-02",
	PeriodMonth: "2006-01",
}

var (
	// ErrQuotaExceeded is matched by every QuotaError via errors.Is.
	ErrQuotaExceeded = errors.New("ratelimit: quota exceeded")

	// ErrInvalidPeriod is returned by NewQuota for an unknown period.
	ErrInvalidPeriod = errors.New("ratelimit: invalid quota period")
)

// QuotaError rejects a key that has used its whole allowance for the
// current window.
type QuotaError struct {
	Key   string
	Used  int
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("ratelimit: quota exceeded for %q (%d/%d)", e.Key, e.Used, e.Limit)
}

// Is reports whether target is ErrQuotaExceeded.
func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// StatusCode reports 429 for callers mapping errors onto HTTP.
func (e *QuotaError) StatusCode() int {
	return http.StatusTooManyRequests
}

// QuotaConfig configures a Quota.
type QuotaConfig struct {
	// Limit is the number of admissions per key and window.
	Limit int

	// Period is one of PeriodHour, PeriodDay or PeriodMonth.
	// Default: PeriodMonth
	Period string

	// Clock decides the current window.
	// Default: real clock
	Clock quartz.Clock
}

// Quota admits a bounded number of operations per key and calendar window.
// Counters of every key reset together when the window changes.
type Quota struct {
	limit  int
	layout string
	clock  quartz.Clock

	mu     sync.Mutex
	window string
	used   map[string]int
}

// NewQuota creates a quota. A Limit below 1 admits nothing.
func NewQuota(config QuotaConfig) (*Quota, error) {
	if config.Period == "" {
		config.Period = PeriodMonth
	}
	layout, ok := periodLayouts[config.Period]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, config.Period)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	return &Quota{
		limit:  config.Limit,
		layout: layout,
		clock:  config.Clock,
		used:   make(map[string]int),
	}, nil
}

// Reserve takes one unit of key's allowance. Cancel the reservation when the
// admitted operation fails so that only successful work is charged.
func (q *Quota) Reserve(key string) (*Reservation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	window := q.rollLocked()
	if used := q.used[key]; used >= q.limit {
		return nil, &QuotaError{Key: key, Used: used, Limit: q.limit}
	}
	q.used[key]++
	return &Reservation{quota: q, key: key, window: window}, nil
}

// Usage returns key's admissions in the current window.
func (q *Quota) Usage(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollLocked()
	return q.used[key]
}

// Remaining returns how many more admissions key has in the current window.
func (q *Quota) Remaining(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollLocked()
	return max(q.limit-q.used[key], 0)
}

// Limit returns the per-window allowance.
func (q *Quota) Limit() int {
	return q.limit
}

// Reset clears every key's usage.
func (q *Quota) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.used)
}

// rollLocked starts a fresh window when the calendar unit changed and
// returns the current window label.
func (q *Quota) rollLocked() string {
	window := q.clock.Now().UTC().Format(q.layout)
	if window != q.window {
		q.window = window
		clear(q.used)
	}
	return window
}

// Reservation is one admission granted by Quota.Reserve.
type Reservation struct {
	quota  *Quota
	key    string
	window string

	once sync.Once
}

// Cancel returns the unit to the quota. It is a no-op once the window the
// unit was taken from has ended, and after the first call.
func (r *Reservation) Cancel() {
	r.once.Do(func() {
		q := r.quota
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.rollLocked() != r.window {
			return
		}
		if q.used[r.key] > 0 {
			q.used[r.key]--
		}
	})
}

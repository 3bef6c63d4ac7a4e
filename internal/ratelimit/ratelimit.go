// Package ratelimit provides per-client request limiting. The window
// implementation keeps a bounded list of recent request timestamps per key,
// pruned lazily on each check. It is an abuse deterrent, not a precise
// sliding window.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter decides whether a client may proceed.
type Limiter interface {
	// Allow reports whether the client identified by key may make a
	// request now, and records the request if so.
	Allow(key string) bool
}

// Window limits each key to Limit requests per Period.
type Window struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	now     func() time.Time
	history map[string][]time.Time
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithClock overrides the time source. Tests inject a fake clock to avoid
// wall-clock waits.
func WithClock(now func() time.Time) WindowOption {
	return func(w *Window) { w.now = now }
}

// NewWindow creates a windowed limiter allowing limit requests per period.
func NewWindow(limit int, period time.Duration, opts ...WindowOption) *Window {
	w := &Window{
		limit:   limit,
		period:  period,
		now:     time.Now,
		history: make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Allow prunes expired timestamps for key and records the request when the
// remaining count is under the limit.
func (w *Window) Allow(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	cutoff := now.Add(-w.period)

	recent := w.history[key][:0]
	for _, ts := range w.history[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= w.limit {
		w.history[key] = recent
		return false
	}

	w.history[key] = append(recent, now)
	return true
}

// Unlimited never rejects. Used when rate limiting is disabled.
type Unlimited struct{}

// Allow always returns true.
func (Unlimited) Allow(string) bool { return true }

var (
	_ Limiter = (*Window)(nil)
	_ Limiter = Unlimited{}
)

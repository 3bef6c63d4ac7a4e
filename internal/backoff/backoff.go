// Package backoff provides the retry policy shared by the RPC endpoint
// fallback and the payment polling loop.
package backoff

import (
	"context"
	"time"
)

// Policy describes an exponential backoff schedule.
type Policy struct {
	// Base is the delay before the second attempt.
	Base time.Duration
	// Multiplier grows the delay after each attempt.
	Multiplier float64
	// Cap bounds the delay.
	Cap time.Duration
	// MaxAttempts bounds the total number of attempts. Must be > 0:
	// unbounded polling can hang a request forever.
	MaxAttempts int
}

// DefaultPolicy matches the payment polling schedule: 20 attempts starting
// at 2s, growing 1.2x per attempt, capped at 8s.
func DefaultPolicy() Policy {
	return Policy{
		Base:        2 * time.Second,
		Multiplier:  1.2,
		Cap:         8 * time.Second,
		MaxAttempts: 20,
	}
}

// Delay returns the wait before attempt n (0-based). Attempt 0 has no delay.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	d := float64(p.Base)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
		if time.Duration(d) >= p.Cap {
			return p.Cap
		}
	}
	if time.Duration(d) > p.Cap {
		return p.Cap
	}
	return time.Duration(d)
}

// Sleeper waits out a delay. The default implementation uses the wall clock;
// tests inject one that returns immediately.
type Sleeper func(ctx context.Context, d time.Duration) error

// WallClock waits for d or until the context is canceled.
func WallClock(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package pacing governs how fast provider calls may be issued.
//
// This package contains:
//   - Pacer: interface invoked before every provider call
//   - Fixed: constant delay before each call
//   - Gate: process-wide token bucket shared by concurrent resolutions
//   - Budget: daily quota tracker
//   - Window: cross-process fixed-window limiter backed by a shared counter
//   - Chain: runs several pacers in order
package pacing

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/namecord/internal/metrics"
)

// DefaultDelay is the minimum delay enforced before every provider call.
const DefaultDelay = 550 * time.Millisecond

// Pacer blocks until a provider call may be issued.
//
// Wait returns ctx.Err() when ctx is done, or a *QuotaError when the call
// must not be issued at all.
type Pacer interface {
	Wait(ctx context.Context) error
}

// QuotaError reports a hard refusal from a pacer.
type QuotaError struct {
	Scope string
	Limit int
	Reset time.Time
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s quota of %d calls exhausted, resets at %s",
		e.Scope, e.Limit, e.Reset.Format(time.RFC3339))
}

// Fixed waits a constant delay before every call. Delays of concurrent
// resolutions are independent.
type Fixed struct {
	Delay time.Duration
}

// NewFixed creates a fixed pacer; a non-positive delay selects DefaultDelay.
func NewFixed(delay time.Duration) Fixed {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return Fixed{Delay: delay}
}

func (f Fixed) Wait(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.PacingWait.WithLabelValues("fixed").Observe(time.Since(start).Seconds())
	}()

	timer := time.NewTimer(f.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Chain runs pacers in order and stops at the first error.
type Chain []Pacer

func (c Chain) Wait(ctx context.Context) error {
	for _, p := range c {
		if p == nil {
			continue
		}
		if err := p.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// None never waits. Used by tests and debugging tools.
type None struct{}

func (None) Wait(ctx context.Context) error {
	return ctx.Err()
}

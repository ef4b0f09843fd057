package pacing

import (
	"context"
	"sync"
	"time"
)

// UsageStats holds quota usage statistics.
type UsageStats struct {
	TotalCalls      int
	CallsThisHour   int
	DailyLimit      int
	RemainingCalls  int
	UsagePercentage float64
	NextResetAt     time.Time
}

// Budget tracks calls against a daily quota that resets at local midnight.
// Wait consumes one call; once the quota is spent it refuses with a
// *QuotaError until the reset.
type Budget struct {
	mu            sync.Mutex
	dailyLimit    int
	totalCalls    int
	callsThisHour int
	hourStartTime time.Time
	resetTime     time.Time

	now func() time.Time
}

// NewBudget creates a budget; dailyLimit <= 0 means unlimited.
func NewBudget(dailyLimit int) *Budget {
	return newBudget(dailyLimit, time.Now)
}

func newBudget(dailyLimit int, now func() time.Time) *Budget {
	t := now()
	return &Budget{
		dailyLimit:    dailyLimit,
		hourStartTime: t,
		resetTime:     nextMidnight(t),
		now:           now,
	}
}

func (b *Budget) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.After(b.resetTime) {
		b.resetUnsafe(now)
	}
	if now.Sub(b.hourStartTime) >= time.Hour {
		b.callsThisHour = 0
		b.hourStartTime = now
	}

	if b.dailyLimit > 0 && b.totalCalls >= b.dailyLimit {
		return &QuotaError{Scope: "daily", Limit: b.dailyLimit, Reset: b.resetTime}
	}

	b.totalCalls++
	b.callsThisHour++
	return nil
}

// GetUsage returns current usage statistics.
func (b *Budget) GetUsage() UsageStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := UsageStats{
		TotalCalls:    b.totalCalls,
		CallsThisHour: b.callsThisHour,
		DailyLimit:    b.dailyLimit,
		NextResetAt:   b.resetTime,
	}
	if b.dailyLimit > 0 {
		stats.RemainingCalls = max(b.dailyLimit-b.totalCalls, 0)
		stats.UsagePercentage = float64(b.totalCalls) / float64(b.dailyLimit) * 100
	}
	return stats
}

// Reset clears all usage counters.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetUnsafe(b.now())
}

func (b *Budget) resetUnsafe(now time.Time) {
	b.totalCalls = 0
	b.callsThisHour = 0
	b.hourStartTime = now
	b.resetTime = nextMidnight(now)
}

func nextMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

package pacing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed_Waits(t *testing.T) {
	p := NewFixed(20 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFixed_DefaultDelay(t *testing.T) {
	assert.Equal(t, DefaultDelay, NewFixed(0).Delay)
}

func TestFixed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFixed(time.Hour).Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGate_SharedAcrossCallers(t *testing.T) {
	g := NewGate(20, 1) // one token every 50ms

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Wait(context.Background()))
	}
	// First token is immediate, the next two are spaced 50ms apart.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestGate_Cancelled(t *testing.T) {
	g := NewGate(0.001, 1)
	require.NoError(t, g.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, g.Wait(ctx))
}

func TestBudget_RefusesWhenExhausted(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	b := newBudget(2, func() time.Time { return now })

	require.NoError(t, b.Wait(context.Background()))
	require.NoError(t, b.Wait(context.Background()))

	err := b.Wait(context.Background())
	var qerr *QuotaError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "daily", qerr.Scope)
	assert.Equal(t, 2, qerr.Limit)

	usage := b.GetUsage()
	assert.Equal(t, 2, usage.TotalCalls)
	assert.Equal(t, 0, usage.RemainingCalls)
	assert.InDelta(t, 100.0, usage.UsagePercentage, 0.001)
}

func TestBudget_ResetsAtMidnight(t *testing.T) {
	now := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	b := newBudget(1, func() time.Time { return now })

	require.NoError(t, b.Wait(context.Background()))
	require.Error(t, b.Wait(context.Background()))

	now = now.Add(2 * time.Minute)
	require.NoError(t, b.Wait(context.Background()))
}

func TestBudget_Unlimited(t *testing.T) {
	b := NewBudget(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, b.Wait(context.Background()))
	}
	assert.Equal(t, 0, b.GetUsage().RemainingCalls)
}

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.counts == nil {
		m.counts = make(map[string]int64)
	}
	m.counts[key]++
	return m.counts[key], nil
}

func TestWindow_WaitsForNextSlot(t *testing.T) {
	c := &memCounter{}
	w := NewWindow(c, "test", 1, 50*time.Millisecond)

	start := time.Now()
	require.NoError(t, w.Wait(context.Background()))
	require.NoError(t, w.Wait(context.Background()))
	assert.Greater(t, time.Since(start), time.Duration(0))

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.GreaterOrEqual(t, len(c.counts), 2)
}

func TestWindow_CounterError(t *testing.T) {
	w := NewWindow(&memCounter{err: errors.New("connection refused")}, "test", 1, time.Second)
	err := w.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window counter")
}

func TestChain_StopsAtFirstError(t *testing.T) {
	now := time.Now()
	b := newBudget(1, func() time.Time { return now })
	c := Chain{None{}, b, nil}

	require.NoError(t, c.Wait(context.Background()))
	assert.Error(t, c.Wait(context.Background()))
}

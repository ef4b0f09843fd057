package pacing

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/namecord/internal/metrics"
)

// Counter increments a shared counter that expires after ttl.
// The Redis client implements it.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Window limits calls across processes to Limit per Size, using a counter
// keyed by the current window.
type Window struct {
	counter Counter
	prefix  string
	limit   int64
	size    time.Duration

	now func() time.Time
}

// NewWindow creates a window limiter. size defaults to one second.
func NewWindow(counter Counter, prefix string, limit int, size time.Duration) *Window {
	if size <= 0 {
		size = time.Second
	}
	if limit < 1 {
		limit = 1
	}
	return &Window{
		counter: counter,
		prefix:  prefix,
		limit:   int64(limit),
		size:    size,
		now:     time.Now,
	}
}

func (w *Window) Wait(ctx context.Context) error {
	start := w.now()
	defer func() {
		metrics.PacingWait.WithLabelValues("window").Observe(time.Since(start).Seconds())
	}()

	for {
		now := w.now()
		slot := now.Truncate(w.size)
		key := fmt.Sprintf("%s:%d", w.prefix, slot.UnixMilli())

		n, err := w.counter.Incr(ctx, key, 2*w.size)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("window counter: %w", err)
		}
		if n <= w.limit {
			return nil
		}

		timer := time.NewTimer(slot.Add(w.size).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

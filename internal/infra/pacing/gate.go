package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/vietddude/namecord/internal/metrics"
)

// Gate is a token bucket shared by every resolution in the process, so that
// concurrent resolutions together stay within the provider's request rate.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate creates a gate allowing perSecond calls with the given burst.
func NewGate(perSecond float64, burst int) *Gate {
	if burst < 1 {
		burst = 1
	}
	return &Gate{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (g *Gate) Wait(ctx context.Context) error {
	start := time.Now()
	err := g.limiter.Wait(ctx)
	metrics.PacingWait.WithLabelValues("gate").Observe(time.Since(start).Seconds())
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

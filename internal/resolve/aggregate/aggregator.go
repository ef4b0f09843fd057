// Package aggregate collects the failures of a multi-attempt search.
package aggregate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vietddude/namecord/internal/core/domain"
)

// Aggregator accumulates per-attempt diagnostics. It is not safe for
// concurrent use; each resolution owns one.
type Aggregator struct {
	errs []error
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Add records the failure of the probe for usage code.
func (a *Aggregator) Add(code domain.UsageCode, err error) {
	if err == nil {
		return
	}
	a.errs = append(a.errs, fmt.Errorf("at last name request for usage %q: %w", code, err))
}

// Len returns the number of recorded failures.
func (a *Aggregator) Len() int {
	return len(a.errs)
}

// Diagnostics returns the recorded failure messages in order.
func (a *Aggregator) Diagnostics() []string {
	out := make([]string, len(a.errs))
	for i, err := range a.errs {
		out[i] = err.Error()
	}
	return out
}

// Discard logs and drops the recorded failures after a successful probe.
func (a *Aggregator) Discard(log *slog.Logger) {
	if len(a.errs) > 0 {
		log.Warn("Last name found after failed probes",
			"failures", len(a.errs),
			"error", errors.Join(a.errs...))
	}
	a.errs = nil
}

// Exhausted builds the final error once every one of attempts candidates failed.
// The message is the recorded diagnostics joined by newlines.
func (a *Aggregator) Exhausted(attempts uint) *domain.ResolutionError {
	if len(a.errs) == 0 {
		return domain.NewResolutionError(
			domain.KindExhausted, attempts, fmt.Sprintf("%d usages", attempts), nil)
	}
	joined := errors.Join(a.errs...)
	return domain.NewResolutionError(domain.KindExhausted, attempts, joined.Error(), joined)
}

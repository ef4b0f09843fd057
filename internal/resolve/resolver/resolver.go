// Package resolver resolves a first name and a culturally matching last name
// against a rate-limited name provider.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/vietddude/namecord/internal/core/domain"
	"github.com/vietddude/namecord/internal/infra/pacing"
	"github.com/vietddude/namecord/internal/metrics"
	"github.com/vietddude/namecord/internal/resolve/reply"
	"github.com/vietddude/namecord/internal/resolve/usage"
)

// NameProvider is the external name database.
type NameProvider interface {
	FetchRandomByGender(ctx context.Context, gender domain.Gender) reply.Reply[[]domain.NameCandidate]
	FetchUsages(ctx context.Context, name string) reply.Reply[[]domain.UsageRecord]
	FetchRandomByUsage(ctx context.Context, q domain.RandomQuery) reply.Reply[[]domain.NameCandidate]
}

// Config holds the resolver's collaborators.
type Config struct {
	// Catalog builds probe candidates. Defaults to the canonical rewrite table.
	Catalog *usage.Catalog
	// Pacer runs before every provider call. Defaults to a 550ms fixed delay.
	Pacer pacing.Pacer
	// NewShuffler returns the randomness used to order one resolution's
	// candidates. Defaults to a randomly seeded PCG.
	NewShuffler func() usage.Shuffler
}

// Resolver runs resolutions. It holds no per-resolution state and is safe
// for concurrent use.
type Resolver struct {
	provider    NameProvider
	catalog     *usage.Catalog
	pacer       pacing.Pacer
	newShuffler func() usage.Shuffler
	log         *slog.Logger
}

// New creates a resolver.
func New(provider NameProvider, cfg Config) *Resolver {
	if cfg.Catalog == nil {
		cfg.Catalog = usage.NewCatalog(nil)
	}
	if cfg.Pacer == nil {
		cfg.Pacer = pacing.NewFixed(pacing.DefaultDelay)
	}
	if cfg.NewShuffler == nil {
		cfg.NewShuffler = func() usage.Shuffler {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return &Resolver{
		provider:    provider,
		catalog:     cfg.Catalog,
		pacer:       cfg.Pacer,
		newShuffler: cfg.NewShuffler,
		log:         slog.Default().With("component", "resolver"),
	}
}

// Request is an unparsed resolution request, as received from a caller.
type Request struct {
	Mode      string
	Gender    string
	FirstName string // non-empty selects the debug path
}

// Handle parses req and runs the matching resolution. Malformed input is
// rejected with a KindInvalidInput error before any provider call.
func (r *Resolver) Handle(ctx context.Context, req Request) (domain.ResolvedName, error) {
	gender, err := domain.ParseGender(req.Gender)
	if err != nil {
		return domain.ResolvedName{}, domain.NewResolutionError(domain.KindInvalidInput, 0, err.Error(), err)
	}
	if req.FirstName != "" {
		return r.ResolveDebug(ctx, req.FirstName, gender)
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return domain.ResolvedName{}, domain.NewResolutionError(domain.KindInvalidInput, 0, err.Error(), err)
	}
	return r.Resolve(ctx, mode, gender)
}

// Resolve runs a resolution in the given mode.
func (r *Resolver) Resolve(
	ctx context.Context,
	mode domain.GenerationMode,
	gender domain.Gender,
) (domain.ResolvedName, error) {
	if mode == domain.ModeChaotic {
		return r.ResolveChaotic(ctx, gender)
	}
	return r.ResolveCoherent(ctx, gender)
}

// ResolveDebug skips the first name fetch and searches a last name for firstName.
func (r *Resolver) ResolveDebug(
	ctx context.Context,
	firstName string,
	gender domain.Gender,
) (domain.ResolvedName, error) {
	log := r.logger("debug")

	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		err := domain.NewResolutionError(domain.KindInvalidInput, 0, "first name is empty", nil)
		return r.finish(log, "debug", domain.ResolvedName{}, err)
	}

	name, err := r.resolveLastName(ctx, log, domain.NameCandidate(firstName), gender)
	return r.finish(log, "debug", name, err)
}

func (r *Resolver) logger(mode string) *slog.Logger {
	return r.log.With("resolution_id", uuid.NewString(), "mode", mode)
}

// finish records the outcome. A failed resolution never returns a partial name.
func (r *Resolver) finish(
	log *slog.Logger,
	mode string,
	name domain.ResolvedName,
	err error,
) (domain.ResolvedName, error) {
	outcome := "full"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "cancelled"
	case err != nil:
		outcome = "error"
	case name.IsMononym():
		outcome = "mononym"
	}
	metrics.ResolutionsTotal.WithLabelValues(mode, outcome).Inc()

	if err != nil {
		log.Info("Resolution failed", "outcome", outcome, "error", err)
		return domain.ResolvedName{}, err
	}
	if name.IsMononym() {
		log.Info("Resolved mononym", "first", name.First, "reason", name.LastErr)
	} else {
		log.Info("Resolved name", "first", name.First, "last", name.Last)
	}
	return name, nil
}

// paced waits on the resolver's pacer and then issues call. The returned error
// is only ever a context error; pacer refusals become Governed replies.
func paced[T any](
	ctx context.Context,
	r *Resolver,
	call func(ctx context.Context) reply.Reply[T],
) (reply.Reply[T], error) {
	if err := r.pacer.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return reply.Reply[T]{}, ctxErr
		}
		var qerr *pacing.QuotaError
		if errors.As(err, &qerr) {
			return reply.Governed[T](qerr.Scope, qerr.Error()), nil
		}
		return reply.TransportFailure[T](err.Error()), nil
	}
	if err := ctx.Err(); err != nil {
		return reply.Reply[T]{}, err
	}
	return call(ctx), nil
}

package resolver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vietddude/namecord/internal/core/domain"
	"github.com/vietddude/namecord/internal/metrics"
	"github.com/vietddude/namecord/internal/resolve/aggregate"
	"github.com/vietddude/namecord/internal/resolve/reply"
)

var errEmptyNameList = errors.New("empty name list")

// ResolveCoherent fetches a random first name and pairs it with a last name
// sharing one of its usages.
//
// A failed first name fetch is fatal. Failures while searching the last name
// only make the result a mononym.
func (r *Resolver) ResolveCoherent(ctx context.Context, gender domain.Gender) (domain.ResolvedName, error) {
	log := r.logger(string(domain.ModeCoherent))

	first, err := r.fetchFirstName(ctx, gender)
	if err != nil {
		return r.finish(log, string(domain.ModeCoherent), domain.ResolvedName{}, err)
	}

	name, err := r.resolveLastName(ctx, log, first, gender)
	return r.finish(log, string(domain.ModeCoherent), name, err)
}

func (r *Resolver) fetchFirstName(ctx context.Context, gender domain.Gender) (domain.NameCandidate, error) {
	rep, err := paced(ctx, r, func(ctx context.Context) reply.Reply[[]domain.NameCandidate] {
		return r.provider.FetchRandomByGender(ctx, gender)
	})
	if err != nil {
		return "", err
	}
	if !rep.OK() {
		return "", domain.NewResolutionError(
			domain.KindProvider, 0, "at first name request: "+rep.Err().Error(), rep.Err())
	}
	if len(rep.Payload) == 0 {
		return "", domain.NewResolutionError(
			domain.KindProvider, 0, "at first name request: "+errEmptyNameList.Error(), errEmptyNameList)
	}
	return rep.Payload[0], nil
}

// resolveLastName probes the usages of first, in shuffled order, until one
// yields a last name. Only context errors are returned as errors.
func (r *Resolver) resolveLastName(
	ctx context.Context,
	log *slog.Logger,
	first domain.NameCandidate,
	gender domain.Gender,
) (domain.ResolvedName, error) {
	usages, err := paced(ctx, r, func(ctx context.Context) reply.Reply[[]domain.UsageRecord] {
		return r.provider.FetchUsages(ctx, string(first))
	})
	if err != nil {
		return domain.ResolvedName{}, err
	}
	if !usages.OK() {
		return domain.ResolvedName{
			First: first,
			LastErr: domain.NewResolutionError(
				domain.KindNoUsableUsage, 0, "at usage request: "+usages.Err().Error(), usages.Err()),
		}, nil
	}

	candidates := r.catalog.Build(usages.Payload, r.newShuffler())
	log.Debug("Built usage catalog", "first", first, "usages", len(usages.Payload), "candidates", len(candidates))
	if len(candidates) == 0 {
		metrics.ProbeAttempts.Observe(0)
		return domain.ResolvedName{
			First:   first,
			LastErr: domain.NewResolutionError(domain.KindNoUsableUsage, 0, "no usable usage found", nil),
		}, nil
	}

	agg := aggregate.New()
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return domain.ResolvedName{}, err
		}

		g := gender
		if g == domain.GenderAny {
			g = c.Gender
		}

		rep, err := paced(ctx, r, func(ctx context.Context) reply.Reply[[]domain.NameCandidate] {
			return r.provider.FetchRandomByUsage(ctx, domain.RandomQuery{
				Gender:     g,
				Usage:      c.Code,
				Count:      1,
				ExactUsage: true,
			})
		})
		if err != nil {
			return domain.ResolvedName{}, err
		}

		if rep.OK() && len(rep.Payload) > 0 {
			metrics.ProbeAttempts.Observe(float64(i + 1))
			agg.Discard(log)
			// The surname trails any names drawn alongside it.
			return domain.ResolvedName{First: first, Last: rep.Payload[len(rep.Payload)-1]}, nil
		}

		probeErr := rep.Err()
		if probeErr == nil {
			probeErr = errEmptyNameList
		}
		log.Debug("Usage probe failed", "usage", c.Code, "gender", g, "error", probeErr)
		agg.Add(c.Code, probeErr)
	}

	metrics.ProbeAttempts.Observe(float64(len(candidates)))
	return domain.ResolvedName{
		First:   first,
		LastErr: agg.Exhausted(uint(len(candidates))),
	}, nil
}

package resolver

import (
	"context"
	"fmt"

	"github.com/vietddude/namecord/internal/core/domain"
	"github.com/vietddude/namecord/internal/resolve/reply"
)

// ResolveChaotic draws two unrelated names in one request and uses them as
// first and last name. A single name yields a mononym.
func (r *Resolver) ResolveChaotic(ctx context.Context, gender domain.Gender) (domain.ResolvedName, error) {
	log := r.logger(string(domain.ModeChaotic))

	rep, err := paced(ctx, r, func(ctx context.Context) reply.Reply[[]domain.NameCandidate] {
		return r.provider.FetchRandomByUsage(ctx, domain.RandomQuery{Gender: gender, Count: 2})
	})
	if err != nil {
		return r.finish(log, string(domain.ModeChaotic), domain.ResolvedName{}, err)
	}
	if !rep.OK() {
		err := domain.NewResolutionError(
			domain.KindProvider, 0, "at name pair request: "+rep.Err().Error(), rep.Err())
		return r.finish(log, string(domain.ModeChaotic), domain.ResolvedName{}, err)
	}

	var name domain.ResolvedName
	switch names := rep.Payload; len(names) {
	case 2:
		name = domain.ResolvedName{First: names[0], Last: names[1]}
	case 1:
		name = domain.ResolvedName{
			First:   names[0],
			LastErr: domain.NewResolutionError(domain.KindNoLastName, 1, "no last name found", nil),
		}
	default:
		err = domain.NewResolutionError(domain.KindProvider, 0,
			fmt.Sprintf("at name pair request: expected 1 or 2 names, got %d", len(names)), nil)
	}
	return r.finish(log, string(domain.ModeChaotic), name, err)
}

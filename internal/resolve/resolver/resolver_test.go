package resolver

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/namecord/internal/core/domain"
	"github.com/vietddude/namecord/internal/infra/pacing"
	"github.com/vietddude/namecord/internal/resolve/reply"
	"github.com/vietddude/namecord/internal/resolve/usage"
)

func newTestResolver(p NameProvider, pacer pacing.Pacer) *Resolver {
	return New(p, Config{
		Pacer:       pacer,
		NewShuffler: func() usage.Shuffler { return identity{} },
	})
}

func TestResolveCoherent_PassesGenderThrough(t *testing.T) {
	genders := []domain.Gender{domain.GenderMale, domain.GenderFemale, domain.GenderUnisex, domain.GenderAny}

	for _, g := range genders {
		t.Run(g.String(), func(t *testing.T) {
			p := &stubProvider{
				first:  reply.Success(names{"Kazimir"}),
				usages: reply.Success([]domain.UsageRecord{}),
			}
			_, err := newTestResolver(p, pacing.None{}).ResolveCoherent(context.Background(), g)
			require.NoError(t, err)
			assert.Equal(t, []domain.Gender{g}, p.firstGenders)
		})
	}
}

func TestResolveCoherent_Kazimir(t *testing.T) {
	p := &stubProvider{
		first: reply.Success(names{"Kazimir"}),
		usages: reply.Success([]domain.UsageRecord{
			{Code: "pol", Gender: domain.GenderMale, Description: "Polish"},
			{Code: "rus", Gender: domain.GenderMale, Description: "Russian"},
		}),
		byUsage: map[domain.UsageCode]reply.Reply[names]{
			"pol": reply.Governed[names]("ip", "blocked (403)"),
			"rus": reply.Success(names{"Ivanov"}),
		},
	}

	name, err := newTestResolver(p, pacing.None{}).ResolveCoherent(context.Background(), domain.GenderAny)
	require.NoError(t, err)
	assert.Equal(t, domain.ResolvedName{First: "Kazimir", Last: "Ivanov"}, name)
	assert.Equal(t, []string{"Kazimir"}, p.lookups)
	assert.Equal(t, []domain.UsageCode{"pol", "rus"}, p.probedCodes())
}

func TestResolveCoherent_ProbeQuery(t *testing.T) {
	p := &stubProvider{
		first: reply.Success(names{"Alex"}),
		usages: reply.Success([]domain.UsageRecord{
			{Code: "eng", Gender: domain.GenderUnisex, Description: "English"},
		}),
		byUsage: map[domain.UsageCode]reply.Reply[names]{
			"eng": reply.Success(names{"Sam", "Smith"}),
		},
	}

	r := newTestResolver(p, pacing.None{})

	name, err := r.ResolveCoherent(context.Background(), domain.GenderAny)
	require.NoError(t, err)
	assert.Equal(t, domain.NameCandidate("Smith"), name.Last)
	assert.Equal(t, domain.RandomQuery{
		Gender: domain.GenderUnisex, Usage: "eng", Count: 1, ExactUsage: true,
	}, p.probes[0])

	_, err = r.ResolveCoherent(context.Background(), domain.GenderFemale)
	require.NoError(t, err)
	assert.Equal(t, domain.GenderFemale, p.probes[1].Gender)
}

func TestResolveCoherent_AugmentedExhausted(t *testing.T) {
	p := &stubProvider{
		first: reply.Success(names{"Hrodebert"}),
		usages: reply.Success([]domain.UsageRecord{
			{Code: "gmc-x", Gender: domain.GenderMale, Description: "Ancient Germanic"},
		}),
		byUsage: map[domain.UsageCode]reply.Reply[names]{
			"gmc-x": reply.Throttled[names]("rate limited (429), retry after: 1"),
			"ger":   reply.TransportFailure[names]("connection reset by peer"),
		},
	}

	name, err := newTestResolver(p, pacing.None{}).ResolveCoherent(context.Background(), domain.GenderMale)
	require.NoError(t, err)
	require.True(t, name.IsMononym())
	assert.Equal(t, domain.NameCandidate("Hrodebert"), name.First)
	assert.Equal(t, []domain.UsageCode{"gmc-x", "ger"}, p.probedCodes())

	lastErr := name.LastErr
	assert.Equal(t, domain.KindExhausted, lastErr.Kind)
	assert.Equal(t, uint(2), lastErr.Attempts)
	lines := strings.Split(lastErr.Message, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "gmc-x")
	assert.Contains(t, lines[0], "throttled")
	assert.Contains(t, lines[1], "ger")
	assert.Contains(t, lines[1], "transport_failure")
}

func TestResolveCoherent_EmptyCatalog(t *testing.T) {
	p := &stubProvider{
		first:  reply.Success(names{"Zeus"}),
		usages: reply.Success([]domain.UsageRecord{}),
	}

	name, err := newTestResolver(p, pacing.None{}).ResolveCoherent(context.Background(), domain.GenderAny)
	require.NoError(t, err)
	require.NotNil(t, name.LastErr)
	assert.Equal(t, domain.KindNoUsableUsage, name.LastErr.Kind)
	assert.Equal(t, uint(0), name.LastErr.Attempts)
	assert.Empty(t, p.probes)
}

func TestResolveCoherent_UsageLookupFails(t *testing.T) {
	p := &stubProvider{
		first:  reply.Success(names{"Cher"}),
		usages: reply.ShapeMismatch[[]domain.UsageRecord]("provider error 50: name not found"),
	}

	name, err := newTestResolver(p, pacing.None{}).ResolveCoherent(context.Background(), domain.GenderAny)
	require.NoError(t, err)
	require.NotNil(t, name.LastErr)
	assert.Equal(t, uint(0), name.LastErr.Attempts)
	assert.Contains(t, name.LastErr.Message, "at usage request")
	assert.Empty(t, p.probes)
}

func TestResolveCoherent_FirstNameFailureIsFatal(t *testing.T) {
	kinds := []reply.Reply[names]{
		reply.ShapeMismatch[names]("expected name list"),
		reply.Throttled[names]("rate limited"),
		reply.Governed[names]("ip", "blocked"),
		reply.TransportFailure[names]("timeout"),
		reply.Success(names{}),
	}

	for _, first := range kinds {
		p := &stubProvider{first: first}
		name, err := newTestResolver(p, pacing.None{}).ResolveCoherent(context.Background(), domain.GenderAny)

		var rerr *domain.ResolutionError
		require.True(t, errors.As(err, &rerr), "kind %v", first.Kind)
		assert.Equal(t, domain.KindProvider, rerr.Kind)
		assert.True(t, rerr.IsFatal())
		assert.Equal(t, domain.ResolvedName{}, name)
		assert.Equal(t, 1, p.calls, "no retry after a fatal first name failure")
	}
}

func TestResolveCoherent_StopsAtFirstSuccess(t *testing.T) {
	p := &stubProvider{
		first: reply.Success(names{"Ana"}),
		usages: reply.Success([]domain.UsageRecord{
			{Code: "spa"}, {Code: "por"}, {Code: "cat"}, {Code: "ita"},
		}),
		byUsage: map[domain.UsageCode]reply.Reply[names]{
			"spa": reply.Throttled[names]("slow down"),
			"por": reply.Success(names{"Silva"}),
			"cat": reply.Success(names{"Puig"}),
		},
	}
	pacer := &countingPacer{}

	name, err := newTestResolver(p, pacer).ResolveCoherent(context.Background(), domain.GenderFemale)
	require.NoError(t, err)
	assert.Equal(t, domain.NameCandidate("Silva"), name.Last)
	assert.Equal(t, []domain.UsageCode{"spa", "por"}, p.probedCodes())

	// first name + lookup + two probes, each preceded by a pacing wait
	assert.Equal(t, 4, p.calls)
	assert.Equal(t, p.calls, pacer.waits)
}

func TestResolveCoherent_DeterministicProbeOrder(t *testing.T) {
	records := []domain.UsageRecord{
		{Code: "pol"}, {Code: "rus"}, {Code: "cze"}, {Code: "ukr"}, {Code: "srb"}, {Code: "gmc-x"},
	}
	run := func() []domain.UsageCode {
		p := &stubProvider{first: reply.Success(names{"Mila"}), usages: reply.Success(records)}
		r := New(p, Config{
			Pacer:       pacing.None{},
			NewShuffler: func() usage.Shuffler { return rand.New(rand.NewPCG(42, 7)) },
		})
		_, err := r.ResolveCoherent(context.Background(), domain.GenderFemale)
		require.NoError(t, err)
		return p.probedCodes()
	}

	first := run()
	assert.Len(t, first, len(records)+1)
	assert.Equal(t, first, run())
}

func TestResolveCoherent_CancelledBetweenProbes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &stubProvider{
		first:  reply.Success(names{"Olga"}),
		usages: reply.Success([]domain.UsageRecord{{Code: "rus"}, {Code: "ukr"}, {Code: "bel"}}),
		onProbe: func(domain.RandomQuery) {
			cancel()
		},
	}

	name, err := newTestResolver(p, pacing.None{}).ResolveCoherent(ctx, domain.GenderFemale)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.ResolvedName{}, name)
	assert.Len(t, p.probes, 1)
}

func TestResolveCoherent_CancelledDuringPacing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := &stubProvider{first: reply.Success(names{"Olga"})}
	name, err := newTestResolver(p, pacing.NewFixed(time.Hour)).ResolveCoherent(ctx, domain.GenderAny)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.ResolvedName{}, name)
	assert.Equal(t, 0, p.calls)
}

func TestResolveCoherent_BudgetRefusalIsGoverned(t *testing.T) {
	p := &stubProvider{
		first:   reply.Success(names{"Ivo"}),
		usages:  reply.Success([]domain.UsageRecord{{Code: "hrv"}, {Code: "slv"}}),
		byUsage: map[domain.UsageCode]reply.Reply[names]{"hrv": reply.Success(names{"Horvat"})},
	}
	// first name and lookup fit in the budget, probes do not
	name, err := newTestResolver(p, pacing.NewBudget(2)).ResolveCoherent(context.Background(), domain.GenderMale)
	require.NoError(t, err)
	require.NotNil(t, name.LastErr)
	assert.Equal(t, uint(2), name.LastErr.Attempts)
	assert.Contains(t, name.LastErr.Message, "governed (daily)")
	assert.Empty(t, p.probes)
}

func TestResolveDebug(t *testing.T) {
	p := &stubProvider{
		usages:  reply.Success([]domain.UsageRecord{{Code: "gre-myth", Gender: domain.GenderMale}}),
		byUsage: map[domain.UsageCode]reply.Reply[names]{"gre": reply.Success(names{"Papadopoulos"})},
	}

	name, err := newTestResolver(p, pacing.None{}).ResolveDebug(context.Background(), " Zeus ", domain.GenderAny)
	require.NoError(t, err)
	assert.Equal(t, domain.ResolvedName{First: "Zeus", Last: "Papadopoulos"}, name)
	assert.Empty(t, p.firstGenders)
	assert.Equal(t, []string{"Zeus"}, p.lookups)
	assert.Equal(t, []domain.UsageCode{"gre-myth", "gre"}, p.probedCodes())
}

func TestResolveChaotic(t *testing.T) {
	tests := []struct {
		name      string
		pair      reply.Reply[names]
		want      domain.ResolvedName
		wantFatal bool
	}{
		{
			name: "two names",
			pair: reply.Success(names{"Kenji", "Moreau"}),
			want: domain.ResolvedName{First: "Kenji", Last: "Moreau"},
		},
		{
			name: "one name",
			pair: reply.Success(names{"Kenji"}),
			want: domain.ResolvedName{
				First:   "Kenji",
				LastErr: domain.NewResolutionError(domain.KindNoLastName, 1, "no last name found", nil),
			},
		},
		{name: "three names", pair: reply.Success(names{"a", "b", "c"}), wantFatal: true},
		{name: "no names", pair: reply.Success(names{}), wantFatal: true},
		{name: "throttled", pair: reply.Throttled[names]("rate limited"), wantFatal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{pair: tt.pair}
			name, err := newTestResolver(p, pacing.None{}).ResolveChaotic(context.Background(), domain.GenderMale)

			assert.Equal(t, 1, p.calls)
			if tt.wantFatal {
				var rerr *domain.ResolutionError
				require.True(t, errors.As(err, &rerr))
				assert.Equal(t, domain.KindProvider, rerr.Kind)
				assert.Equal(t, domain.ResolvedName{}, name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestHandle_InvalidInput(t *testing.T) {
	tests := []Request{
		{Gender: "robot"},
		{Gender: "m", Mode: "orderly"},
		{Gender: "x", FirstName: "Kazimir"},
	}

	for _, req := range tests {
		p := &stubProvider{}
		_, err := newTestResolver(p, pacing.None{}).Handle(context.Background(), req)

		var rerr *domain.ResolutionError
		require.True(t, errors.As(err, &rerr), "request %+v", req)
		assert.Equal(t, domain.KindInvalidInput, rerr.Kind)
		assert.Equal(t, 0, p.calls, "no provider call for %+v", req)
	}
}

func TestHandle_Dispatch(t *testing.T) {
	p := &stubProvider{
		first:  reply.Success(names{"Iris"}),
		usages: reply.Success([]domain.UsageRecord{}),
		pair:   reply.Success(names{"Iris", "Nakamura"}),
	}
	r := newTestResolver(p, pacing.None{})

	name, err := r.Handle(context.Background(), Request{Mode: "chaotic", Gender: "f"})
	require.NoError(t, err)
	assert.Equal(t, "Iris Nakamura", name.FullName())

	name, err = r.Handle(context.Background(), Request{Gender: "f"})
	require.NoError(t, err)
	assert.True(t, name.IsMononym())
	assert.Equal(t, []domain.Gender{domain.GenderFemale}, p.firstGenders)

	_, err = r.Handle(context.Background(), Request{FirstName: "Iris"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Iris", "Iris"}, p.lookups)
}

package resolver

import (
	"context"
	"sync"

	"github.com/vietddude/namecord/internal/core/domain"
	"github.com/vietddude/namecord/internal/resolve/reply"
)

type names = []domain.NameCandidate

// stubProvider replays scripted replies and records every call.
type stubProvider struct {
	mu sync.Mutex

	first   reply.Reply[names]
	usages  reply.Reply[[]domain.UsageRecord]
	byUsage map[domain.UsageCode]reply.Reply[names]
	pair    reply.Reply[names]

	calls        int
	firstGenders []domain.Gender
	lookups      []string
	probes       []domain.RandomQuery
	onProbe      func(q domain.RandomQuery)
}

func (s *stubProvider) FetchRandomByGender(_ context.Context, g domain.Gender) reply.Reply[names] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.firstGenders = append(s.firstGenders, g)
	return s.first
}

func (s *stubProvider) FetchUsages(_ context.Context, name string) reply.Reply[[]domain.UsageRecord] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lookups = append(s.lookups, name)
	return s.usages
}

func (s *stubProvider) FetchRandomByUsage(_ context.Context, q domain.RandomQuery) reply.Reply[names] {
	s.mu.Lock()
	s.calls++
	onProbe := s.onProbe
	var rep reply.Reply[names]
	if q.Usage == "" {
		rep = s.pair
	} else {
		s.probes = append(s.probes, q)
		var ok bool
		rep, ok = s.byUsage[q.Usage]
		if !ok {
			rep = reply.ShapeMismatch[names]("provider error 50: no names for usage")
		}
	}
	s.mu.Unlock()

	if onProbe != nil && q.Usage != "" {
		onProbe(q)
	}
	return rep
}

func (s *stubProvider) probedCodes() []domain.UsageCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]domain.UsageCode, len(s.probes))
	for i, q := range s.probes {
		codes[i] = q.Usage
	}
	return codes
}

// countingPacer counts waits without delaying.
type countingPacer struct {
	mu    sync.Mutex
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waits++
	return ctx.Err()
}

// identity keeps catalog order so probe order is predictable.
type identity struct{}

func (identity) Shuffle(int, func(i, j int)) {}

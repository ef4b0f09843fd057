// Package worker runs resolutions on a bounded pool of goroutines.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/namecord/internal/core/domain"
	"github.com/vietddude/namecord/internal/metrics"
	"github.com/vietddude/namecord/internal/resolve/resolver"
)

// ErrPoolClosed is returned when submitting to a pool that is not running.
var ErrPoolClosed = errors.New("worker pool closed")

// Resolver handles one resolution request.
type Resolver interface {
	Handle(ctx context.Context, req resolver.Request) (domain.ResolvedName, error)
}

// Config holds worker pool configuration.
type Config struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// DefaultConfig returns default pool configuration.
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		QueueSize: 32,
	}
}

type result struct {
	name domain.ResolvedName
	err  error
}

type job struct {
	ctx  context.Context
	req  resolver.Request
	done chan result
}

// Pool runs resolutions concurrently. Each resolution runs on a single worker
// and owns its own state; workers share only the resolver.
type Pool struct {
	cfg      Config
	resolver Resolver
	jobs     chan job
	stop     chan struct{}
	stopOnce sync.Once
	log      *slog.Logger

	mu      sync.RWMutex
	started bool
	closed  bool
	g       *errgroup.Group
}

// NewPool creates a pool. Non-positive sizes fall back to DefaultConfig.
func NewPool(r Resolver, cfg Config) *Pool {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = def.QueueSize
	}
	return &Pool{
		cfg:      cfg,
		resolver: r,
		jobs:     make(chan job, cfg.QueueSize),
		stop:     make(chan struct{}),
		log:      slog.Default().With("component", "worker"),
	}
}

// Start launches the workers. Cancelling ctx cancels in-flight and queued
// resolutions; Close must still be called to release the workers.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	p.g = &errgroup.Group{}

	for i := 0; i < p.cfg.Workers; i++ {
		p.g.Go(func() error {
			p.work(ctx)
			return nil
		})
	}
	p.log.Info("Worker pool started", "workers", p.cfg.Workers, "queue", p.cfg.QueueSize)
}

// Resolve queues req and waits for its result. It blocks while the queue is
// full and returns early when ctx is done.
func (p *Pool) Resolve(ctx context.Context, req resolver.Request) (domain.ResolvedName, error) {
	j := job{ctx: ctx, req: req, done: make(chan result, 1)}

	if err := p.submit(ctx, j); err != nil {
		return domain.ResolvedName{}, err
	}

	select {
	case res := <-j.done:
		return res.name, res.err
	case <-ctx.Done():
		return domain.ResolvedName{}, ctx.Err()
	}
}

func (p *Pool) submit(ctx context.Context, j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.started || p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- j:
		metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
		return nil
	case <-p.stop:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) work(poolCtx context.Context) {
	for j := range p.jobs {
		metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))

		ctx, cancel := context.WithCancel(j.ctx)
		stopAfter := context.AfterFunc(poolCtx, cancel)

		var res result
		if err := ctx.Err(); err != nil {
			res.err = err
		} else {
			res.name, res.err = p.resolver.Handle(ctx, j.req)
		}

		stopAfter()
		cancel()
		j.done <- res
	}
}

// Close stops accepting work, lets queued resolutions finish and waits for
// the workers to exit.
func (p *Pool) Close() error {
	p.stopOnce.Do(func() { close(p.stop) })

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	g := p.g
	p.mu.Unlock()

	if g == nil {
		return nil
	}
	err := g.Wait()
	metrics.WorkerQueueDepth.Set(0)
	p.log.Info("Worker pool stopped")
	return err
}

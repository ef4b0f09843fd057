// Package control wires the name resolver and its infrastructure into a
// running application.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/namecord/internal/core/config"
	"github.com/vietddude/namecord/internal/core/worker"
	"github.com/vietddude/namecord/internal/infra/btn"
	"github.com/vietddude/namecord/internal/infra/pacing"
	redisclient "github.com/vietddude/namecord/internal/infra/redis"
	"github.com/vietddude/namecord/internal/links"
	"github.com/vietddude/namecord/internal/resolve/resolver"
	"github.com/vietddude/namecord/internal/resolve/usage"
	"github.com/vietddude/namecord/internal/server"
)

// App holds every long-lived component.
type App struct {
	cfg         *config.AppConfig
	client      *btn.Client
	redisClient *redisclient.Client
	budget      *pacing.Budget
	resolver    *resolver.Resolver
	pool        *worker.Pool
	checker     *links.Checker
	server      *server.Server
	log         *slog.Logger
}

// NewApp creates an App from cfg. Nothing is started.
func NewApp(cfg *config.AppConfig) (*App, error) {
	table, err := usage.NewRewriteTable(cfg.Usage.Rewrites)
	if err != nil {
		return nil, fmt.Errorf("failed to build rewrite table: %w", err)
	}

	client := btn.NewClient(cfg.Provider)
	if cfg.Provider.APIKey == "" {
		slog.Warn("No provider API key configured", "env", config.APIKeyEnv)
	}

	// 1. Pacing: fixed delay per resolution, then the process-wide gates
	budget := pacing.NewBudget(cfg.Pacing.DailyQuota)
	pacer := pacing.Chain{pacing.NewFixed(cfg.Pacing.Delay)}
	if cfg.Pacing.Rate > 0 {
		pacer = append(pacer, pacing.NewGate(cfg.Pacing.Rate, cfg.Pacing.Burst))
	}
	pacer = append(pacer, budget)

	var redisClient *redisclient.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		pacer = append(pacer, pacing.NewWindow(
			redisClient,
			redisclient.PacingKey(cfg.Redis.KeyPrefix),
			cfg.Redis.WindowLimit,
			time.Second,
		))
		slog.Info("Using Redis pacing window", "limit", cfg.Redis.WindowLimit)
	}

	// 2. Resolution
	res := resolver.New(client, resolver.Config{
		Catalog: usage.NewCatalog(table),
		Pacer:   pacer,
	})
	pool := worker.NewPool(res, cfg.Worker)

	// 3. Profiles and HTTP
	checker := links.NewChecker(links.Config{
		FirstNameBase: cfg.Profiles.FirstNameBase,
		LastNameBase:  cfg.Profiles.LastNameBase,
		Timeout:       cfg.Provider.Timeout,
	})
	srv := server.NewServer(server.Deps{
		Names:   pool,
		About:   checker,
		Monitor: client.Monitor,
		Quota:   budget,
	}, cfg.Server.Port)

	return &App{
		cfg:         cfg,
		client:      client,
		redisClient: redisClient,
		budget:      budget,
		resolver:    res,
		pool:        pool,
		checker:     checker,
		server:      srv,
		log:         slog.Default().With("component", "app"),
	}, nil
}

// Resolver returns the resolver for one-shot commands.
func (a *App) Resolver() *resolver.Resolver {
	return a.resolver
}

// Checker returns the profile checker.
func (a *App) Checker() *links.Checker {
	return a.checker
}

// Handler returns the HTTP routes without starting a listener.
func (a *App) Handler() http.Handler {
	return a.server.Routes()
}

// Start starts the worker pool, the HTTP server and the stats reporter.
func (a *App) Start(ctx context.Context) error {
	a.pool.Start(ctx)

	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()

	go a.runStatsReporter(ctx)
	return nil
}

// Stop shuts down the HTTP server, drains the pool and releases connections.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping namecord...")

	serverErr := a.server.Stop(ctx)
	poolErr := a.pool.Close()
	return errors.Join(serverErr, poolErr, a.Close())
}

// Close releases client connections without touching the server or pool.
func (a *App) Close() error {
	var redisErr error
	if a.redisClient != nil {
		redisErr = a.redisClient.Close()
	}
	return errors.Join(a.client.Close(), redisErr)
}

func (a *App) runStatsReporter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := a.client.Monitor.Stats()
			quota := a.budget.GetUsage()
			a.log.Debug("Provider stats",
				"status", stats.Status,
				"avg_latency", stats.AverageLatency,
				"requests_last_hour", stats.RequestsLastHour,
				"calls_today", quota.TotalCalls,
				"remaining", quota.RemainingCalls)
			if quota.DailyLimit > 0 && quota.UsagePercentage >= 90 {
				a.log.Warn("Daily provider quota nearly spent",
					"used", quota.TotalCalls, "limit", quota.DailyLimit)
			}
		}
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/leetlens/internal/adapters/contestcache"
	"github.com/okian/leetlens/internal/adapters/http/api"
	"github.com/okian/leetlens/internal/adapters/leetcode"
	"github.com/okian/leetlens/internal/adapters/repository"
	"github.com/okian/leetlens/internal/app"
	"github.com/okian/leetlens/internal/config"
	"github.com/okian/leetlens/internal/contest"
	"github.com/okian/leetlens/internal/domain/weakness"
	"github.com/okian/leetlens/internal/domain/weights"
	"github.com/okian/leetlens/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		log.Error(ctx, "failed to open database", logger.Error(err))
		return
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Error(ctx, "closing database", logger.Error(cerr))
		}
	}()

	cache, err := contestcache.OpenBadger(cfg.CacheDir)
	if err != nil {
		log.Error(ctx, "failed to open contest cache", logger.Error(err))
		return
	}
	defer func() {
		if cerr := cache.Close(); cerr != nil {
			log.Error(ctx, "closing contest cache", logger.Error(cerr))
		}
	}()

	table := weights.Load(cfg.WeightsPath)
	if table.Fallback() {
		log.Warn(ctx, "topic-weight artifact unavailable; using embedded fallback",
			logger.String("path", cfg.WeightsPath))
	}

	client := leetcode.NewHTTPClient(
		leetcode.WithEndpoint(cfg.RemoteEndpoint),
		leetcode.WithTimeout(time.Duration(cfg.RemoteTimeoutSeconds)*time.Second),
		leetcode.WithRateLimit(cfg.RemoteRatePerSecond),
	)

	manager := contest.NewManager(client, cache, store,
		contest.WithTTL(time.Duration(cfg.ContestCacheTTLHours)*time.Hour),
		contest.WithConcurrency(cfg.ContestConcurrency),
	)

	svc := app.New(store, store, client, manager,
		weakness.NewScorer(table),
		app.WithWeakCacheTTL(cfg.WeakCacheTTLHours),
		app.WithCandidateCap(cfg.RecommendCandidateCap),
		app.WithRecommendLimits(cfg.RecommendDefaultLimit, cfg.RecommendMaxLimit),
	)

	server := api.NewServer(svc, cfg.JWTSecret)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "graceful shutdown failed", logger.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/treasurehunt/internal/catalog"
	"github.com/playperu/treasurehunt/internal/config"
	"github.com/playperu/treasurehunt/internal/database"
	"github.com/playperu/treasurehunt/internal/handler/health"
	"github.com/playperu/treasurehunt/internal/migrations"
	"github.com/playperu/treasurehunt/internal/round"
	"github.com/playperu/treasurehunt/internal/server"
	"github.com/playperu/treasurehunt/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// leaderboard is both where won rounds are recorded and where the board is
// read from.
type leaderboard interface {
	round.ResultSink
	server.Leaderboard
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	st := store.New(db)

	scenes, err := catalog.Load(cfg.SceneCatalog)
	if err != nil {
		return fmt.Errorf("loading scenes: %w", err)
	}
	added, err := st.SeedScenes(ctx, scenes)
	if err != nil {
		return fmt.Errorf("seeding scenes: %w", err)
	}
	logger.Info("seeded scenes", "catalog", len(scenes), "added", added)

	checks := map[string]health.Checker{
		"sqlite": health.CheckerFunc(db.PingContext),
	}

	// --- Redis (optional leaderboard cache) ---
	var board leaderboard = st
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		board = store.NewCachedLeaderboard(st, rdb, cfg.LeaderboardCacheTTL, logger)
		checks["redis"] = health.CheckerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	// --- Rounds ---
	broker := server.NewBroker()
	rounds := round.NewManager(round.Options{
		TickEvery: cfg.TickInterval,
		Sink:      board,
		Publisher: broker,
		Logger:    logger,
	}, cfg.RoundTTL)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Scenes:           st,
		Leaderboard:      board,
		Rounds:           rounds,
		Broker:           broker,
		Identity:         server.Identity{AnonymousName: cfg.AnonymousName},
		LeaderboardLimit: cfg.LeaderboardLimit,
		Checks:           checks,
		SPADir:           cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		return rounds.Run(gctx, cfg.SweepInterval)
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

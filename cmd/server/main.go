package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/floatpack/rideathon/internal/config"
	"github.com/floatpack/rideathon/internal/database"
	"github.com/floatpack/rideathon/internal/eventconfig"
	"github.com/floatpack/rideathon/internal/handler/health"
	"github.com/floatpack/rideathon/internal/migrations"
	"github.com/floatpack/rideathon/internal/scorekeeper"
	"github.com/floatpack/rideathon/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
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

	store := server.NewSQLiteStore(db)

	if cfg.EventFile != "" {
		if err := seedEvent(ctx, logger, store, cfg.EventFile); err != nil {
			return err
		}
	}

	// --- Scoring ---
	broker := server.NewBroker()
	keeper := scorekeeper.New(store, logger, cfg.ScoreInterval,
		scorekeeper.WithNotify(server.ScoreboardNotifier(store, broker, logger)),
	)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Store:          store,
		Broker:         broker,
		Scores:         keeper,
		AdminToken:     cfg.AdminToken,
		ForfeitPenalty: cfg.ForfeitPenalty,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
			"sqlite":      health.DB(db),
			"scorekeeper": keeper,
		}).Routes())
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
		logger.Info("starting scorekeeper", "interval", cfg.ScoreInterval)
		return keeper.Run(gctx)
	})

	return g.Wait()
}

// seedEvent loads the event file into an empty database. A database that
// already holds teams is left alone so restarts keep progress.
func seedEvent(ctx context.Context, logger *slog.Logger, store *server.SQLiteStore, path string) error {
	empty, err := store.IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("checking for existing event: %w", err)
	}
	if !empty {
		logger.Info("event already populated, skipping seed", "file", path)
		return nil
	}

	ev, err := eventconfig.Load(path)
	if err != nil {
		return fmt.Errorf("loading event file: %w", err)
	}
	res, err := store.Populate(ctx, ev)
	if err != nil {
		return fmt.Errorf("seeding event: %w", err)
	}
	logger.Info("seeded event", "file", path, "teams", res.Teams, "challenges", res.Challenges)
	return nil
}

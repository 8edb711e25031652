package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/movie-swipe/internal/config"
	httpserver "github.com/Clark-Hu/movie-swipe/internal/http"
	"github.com/Clark-Hu/movie-swipe/internal/logging"
	"github.com/Clark-Hu/movie-swipe/internal/metadata"
	"github.com/Clark-Hu/movie-swipe/internal/metrics"
	"github.com/Clark-Hu/movie-swipe/internal/repository"
	"github.com/Clark-Hu/movie-swipe/internal/service"
	"github.com/Clark-Hu/movie-swipe/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateMetadata(); err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger := logging.With("main")

	st, err := store.New(ctx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        cfg.DBMaxConnIdle,
		MaxConnLifetime:        cfg.DBMaxConnLifetime,
		ConnTimeout:            cfg.DBConnTimeout,
		StatementCacheCapacity: cfg.DBStatementCache,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer st.Close()

	if cfg.DBMigrate {
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info().Msg("migrations applied")
	}

	omdb, err := metadata.NewHTTPClient(cfg.OMDBURL, cfg.OMDBAPIKey, cfg.OMDBTimeout)
	if err != nil {
		return fmt.Errorf("init metadata client: %w", err)
	}

	svc := service.New(repository.New(st), omdb)
	server := httpserver.New(cfg, st, svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	g.Go(func() error {
		return metrics.ReportPoolStats(gctx, st, cfg.StatsInterval)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

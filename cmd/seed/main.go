package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Clark-Hu/movie-swipe/internal/config"
	"github.com/Clark-Hu/movie-swipe/internal/logging"
	"github.com/Clark-Hu/movie-swipe/internal/repository"
	"github.com/Clark-Hu/movie-swipe/internal/seed"
	"github.com/Clark-Hu/movie-swipe/internal/service"
	"github.com/Clark-Hu/movie-swipe/internal/store"
)

func main() {
	owner := seed.DefaultOwner
	flag.StringVar(&owner.ExternalID, "owner", owner.ExternalID, "external id of the account credited with the seed movies")
	flag.StringVar(&owner.Username, "owner-username", owner.Username, "username for a newly created owner")
	flag.Parse()

	if err := run(owner); err != nil {
		logging.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}

func run(owner seed.Owner) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seeding never looks anything up, so no OMDb settings are required.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	st, err := store.New(ctx, cfg.DBURL, store.Options{
		MaxConns:    2,
		ConnTimeout: cfg.DBConnTimeout,
		// -1 leaves pgx's default query mode alone.
		StatementCacheCapacity: -1,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer st.Close()

	if cfg.DBMigrate {
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	report, err := seed.Run(ctx, service.New(repository.New(st), nil), owner)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger := logging.With("seed")
	logger.Info().Int("added", report.Added).Int("skipped", report.Skipped).Msg("seed complete")
	return nil
}

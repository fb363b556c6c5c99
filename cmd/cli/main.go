package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/dvloznov/payment-tracker/internal/config"
	"github.com/dvloznov/payment-tracker/internal/logger"
	"github.com/dvloznov/payment-tracker/internal/pipeline"
)

func main() {
	log := logger.New()

	windowDays := flag.Int("window-days", 0, "How many days back to scan (overrides WINDOW_DAYS)")
	backend := flag.String("backend", "", "Store backend: notion, sheets or bigquery (overrides STORE_BACKEND)")
	dryRun := flag.Bool("dry-run", false, "Extract and report without writing to the store")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if *windowDays != 0 {
		if *windowDays < 0 {
			log.Fatal().Int("window_days", *windowDays).Msg("Error: -window-days must be positive")
		}
		cfg.WindowDays = *windowDays
	}
	if *backend != "" {
		cfg.StoreBackend = config.Backend(*backend)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Int("window_days", cfg.WindowDays).
		Str("backend", string(cfg.StoreBackend)).
		Bool("dry_run", *dryRun).
		Msg("Starting payment extraction")

	runner := pipeline.NewRunner(cfg, log)
	report, err := runner.Run(ctx, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Run failed")
	}

	log.Info().
		Int("payments_processed", report.PaymentsProcessed).
		Int("created", report.Sync.Created).
		Int("skipped_duplicates", report.Sync.SkippedDuplicates).
		Int("failed", report.Sync.Failed).
		Msg("Run complete")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error().Err(err).Msg("Failed to print report")
	}
}

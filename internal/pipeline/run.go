// Package pipeline wires one full extraction run: mailbox scan, schema
// setup, and sync into the configured store backend.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/config"
	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/extract"
	"github.com/dvloznov/payment-tracker/internal/logger"
	"github.com/dvloznov/payment-tracker/internal/mailbox"
	"github.com/dvloznov/payment-tracker/internal/store"
	bqstore "github.com/dvloznov/payment-tracker/internal/store/bigquery"
	notionstore "github.com/dvloznov/payment-tracker/internal/store/notion"
	sheetstore "github.com/dvloznov/payment-tracker/internal/store/sheets"
	"github.com/dvloznov/payment-tracker/internal/syncengine"
)

// Report is the structured outcome of one run, returned to the trigger
// surface and the CLI.
type Report struct {
	PaymentsProcessed int               `json:"payments_processed"`
	Stats             extract.RunStats  `json:"stats"`
	Sync              domain.SyncResult `json:"sync"`
	Summary           domain.RunSummary `json:"summary"`
}

// Runner composes the pipeline from configuration. One Runner serves many
// runs; each run is synchronous and run-to-completion.
type Runner struct {
	cfg *config.Config
	log zerolog.Logger

	// newDialer and newStore are swappable for tests.
	newDialer func() mailbox.Dialer
	newStore  func(ctx context.Context) (store.PaymentStore, func(), error)
}

// NewRunner creates a Runner over the given configuration.
func NewRunner(cfg *config.Config, log zerolog.Logger) *Runner {
	r := &Runner{cfg: cfg, log: log}
	r.newDialer = func() mailbox.Dialer {
		return &mailbox.IMAPDialer{
			Addr:     cfg.IMAPAddr,
			Username: cfg.GmailUsername,
			Password: cfg.GmailPassword,
		}
	}
	r.newStore = r.openConfiguredStore
	return r
}

// Run executes one extraction-and-sync cycle. With dryRun set the store is
// never touched: extraction results are reported and discarded.
// Errors are transport-fatal or store-setup-fatal; everything milder is
// inside the Report.
func (r *Runner) Run(ctx context.Context, dryRun bool) (*Report, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	extractor := extract.NewExtractor(
		r.newDialer(),
		r.cfg.WindowDays,
		r.cfg.DefaultCurrency,
		logger.WithComponent(r.log, "extractor"),
		nil,
	)

	payments, stats, err := extractor.ExtractAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	report := &Report{
		PaymentsProcessed: len(payments),
		Stats:             stats,
		Summary:           domain.Summarize(payments),
	}

	if len(payments) == 0 {
		r.log.Info().Msg("No new payments to process")
		return report, nil
	}
	if dryRun {
		r.log.Info().Int("payments", len(payments)).Msg("Dry run, skipping store sync")
		return report, nil
	}

	st, closeStore, err := r.newStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	defer closeStore()

	if err := st.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	engine := syncengine.New(st, logger.WithComponent(r.log, "sync"))
	report.Sync = engine.Sync(ctx, payments)
	return report, nil
}

// openConfiguredStore builds the backend selected by STORE_BACKEND.
func (r *Runner) openConfiguredStore(ctx context.Context) (store.PaymentStore, func(), error) {
	noop := func() {}
	log := logger.WithComponent(r.log, "store")

	switch r.cfg.StoreBackend {
	case config.BackendNotion:
		svc := notionstore.NewClient(r.cfg.NotionToken)
		return notionstore.NewStore(svc, r.cfg.NotionDatabaseID, r.cfg.NotionParentPageID, log), noop, nil

	case config.BackendSheets:
		client, err := sheetstore.NewClient(ctx, []byte(r.cfg.GoogleCredentialsJSON), r.cfg.SheetsSpreadsheetID)
		if err != nil {
			return nil, nil, fmt.Errorf("openConfiguredStore: %w", err)
		}
		return sheetstore.NewStore(client, log, nil), noop, nil

	case config.BackendBigQuery:
		st, err := bqstore.NewStore(ctx, r.cfg.BigQueryProjectID, r.cfg.BigQueryDataset, log)
		if err != nil {
			return nil, nil, fmt.Errorf("openConfiguredStore: %w", err)
		}
		return st, func() { _ = st.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("openConfiguredStore: unknown backend %q", r.cfg.StoreBackend)
	}
}

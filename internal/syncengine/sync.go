// Package syncengine reconciles freshly extracted payments against the
// external store. It is the only cross-run coordination mechanism: there is
// no lock, just the duplicate check on message ids.
package syncengine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
)

// Engine merges batches into a PaymentStore without creating duplicates.
type Engine struct {
	store store.PaymentStore
	log   zerolog.Logger
}

// New creates an Engine over the configured store backend.
func New(s store.PaymentStore, log zerolog.Logger) *Engine {
	return &Engine{store: s, log: log}
}

// Sync filters duplicates, orders what remains newest-first, and writes the
// staged records in one batch. Partial failures land in the result; Sync
// itself never fails. A failed duplicate read degrades to an empty known set:
// the occasional duplicate row beats losing new data.
func (e *Engine) Sync(ctx context.Context, payments []*domain.Payment) domain.SyncResult {
	var result domain.SyncResult
	if len(payments) == 0 {
		return result
	}

	known, err := e.store.ExistingMessageIDs(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("Duplicate check degraded to empty known set")
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate check degraded: %v", err))
		known = make(map[string]struct{})
	} else {
		e.log.Info().Int("known_ids", len(known)).Msg("Read existing message ids")
	}

	// Work on a copy; callers keep their extraction order.
	batch := make([]*domain.Payment, len(payments))
	copy(batch, payments)
	domain.SortNewestFirst(batch)

	staged := make([]*domain.Payment, 0, len(batch))
	for _, p := range batch {
		if _, dup := known[p.MessageID]; dup {
			result.SkippedDuplicates++
			e.log.Info().Str("message_id", p.MessageID).Msg("Skipping duplicate payment")
			continue
		}
		// Claim the id immediately so a repeat within this batch is caught
		// before anything is written.
		known[p.MessageID] = struct{}{}
		staged = append(staged, p)
	}

	if len(staged) > 0 {
		report := e.store.WritePayments(ctx, staged)
		result.Created = report.Created
		result.Failed = report.Failed
		result.Errors = append(result.Errors, report.Errors...)
	}

	e.log.Info().
		Int("created", result.Created).
		Int("skipped_duplicates", result.SkippedDuplicates).
		Int("failed", result.Failed).
		Msg("Sync complete")
	return result
}

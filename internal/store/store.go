// Package store defines the contract every external tabular backend
// implements. The sync engine only sees this interface; whether records land
// in Notion, a spreadsheet or BigQuery is a configuration choice.
package store

import (
	"context"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// WriteReport is the outcome of one batch write. Partial failures are data,
// not errors: per-record problems are counted and listed while the rest of
// the batch still lands.
type WriteReport struct {
	Created int
	Failed  int
	Errors  []string
}

// PaymentStore is the capability set shared by all backends.
type PaymentStore interface {
	// EnsureSchema creates the target structure if missing and validates it
	// if present. Runs once per run, before any read or write; failure here
	// aborts the run before anything is written.
	EnsureSchema(ctx context.Context) error

	// ExistingMessageIDs enumerates the deduplication keys already stored.
	// An error degrades the sync to an empty known set rather than aborting.
	ExistingMessageIDs(ctx context.Context) (map[string]struct{}, error)

	// WritePayments persists the staged batch. Backends with a batch
	// primitive use a single call; per-record backends attempt every record
	// and report individual failures.
	WritePayments(ctx context.Context, payments []*domain.Payment) WriteReport
}

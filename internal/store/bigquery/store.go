// Package bigquery implements the payment store on a BigQuery table:
// dataset/table setup is create-if-missing, the duplicate read is a DISTINCT
// query over message ids, and writes go through the streaming inserter in one
// batch.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
)

const paymentsTable = "payments"

// PaymentRow maps a payment onto the payments table schema. The raw date
// header is stored verbatim alongside the parsed-out fields, matching the
// audit-trail role the record has everywhere else.
type PaymentRow struct {
	MessageID        string    `bigquery:"message_id"`
	Service          string    `bigquery:"service"`
	Sender           string    `bigquery:"sender"`
	Amount           string    `bigquery:"amount"`
	Currency         string    `bigquery:"currency"`
	CurrencyInferred bool      `bigquery:"currency_inferred"`
	Date             string    `bigquery:"date"`
	DaysAgo          string    `bigquery:"days_ago"`
	Subject          string    `bigquery:"subject"`
	FromEmail        string    `bigquery:"from_email"`
	ToEmail          string    `bigquery:"to_email"`
	ExtractedTS      time.Time `bigquery:"extracted_ts"`
}

func paymentsSchema() bigquery.Schema {
	return bigquery.Schema{
		{Name: "message_id", Type: bigquery.StringFieldType, Required: true},
		{Name: "service", Type: bigquery.StringFieldType},
		{Name: "sender", Type: bigquery.StringFieldType},
		{Name: "amount", Type: bigquery.StringFieldType},
		{Name: "currency", Type: bigquery.StringFieldType},
		{Name: "currency_inferred", Type: bigquery.BooleanFieldType},
		{Name: "date", Type: bigquery.StringFieldType},
		{Name: "days_ago", Type: bigquery.StringFieldType},
		{Name: "subject", Type: bigquery.StringFieldType},
		{Name: "from_email", Type: bigquery.StringFieldType},
		{Name: "to_email", Type: bigquery.StringFieldType},
		{Name: "extracted_ts", Type: bigquery.TimestampFieldType},
	}
}

// Store implements store.PaymentStore against one BigQuery dataset.
type Store struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	log       zerolog.Logger
}

// NewStore creates a Store with a shared BigQuery client.
func NewStore(ctx context.Context, projectID, datasetID string, log zerolog.Logger) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: bigquery client: %w", err)
	}
	return &Store{client: client, projectID: projectID, datasetID: datasetID, log: log}, nil
}

// Close closes the BigQuery client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// EnsureSchema creates the dataset and payments table when missing and
// validates the column set when present.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ds := s.client.Dataset(s.datasetID)
	if _, err := ds.Metadata(ctx); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("EnsureSchema: dataset metadata: %w", err)
		}
		if err := ds.Create(ctx, &bigquery.DatasetMetadata{}); err != nil {
			return fmt.Errorf("EnsureSchema: creating dataset %s: %w", s.datasetID, err)
		}
		s.log.Info().Str("dataset", s.datasetID).Msg("Created BigQuery dataset")
	}

	table := ds.Table(paymentsTable)
	meta, err := table.Metadata(ctx)
	if err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("EnsureSchema: table metadata: %w", err)
		}
		if err := table.Create(ctx, &bigquery.TableMetadata{Schema: paymentsSchema()}); err != nil {
			return fmt.Errorf("EnsureSchema: creating table %s: %w", paymentsTable, err)
		}
		s.log.Info().Str("table", paymentsTable).Msg("Created BigQuery table")
		return nil
	}

	existing := make(map[string]bool, len(meta.Schema))
	for _, f := range meta.Schema {
		existing[f.Name] = true
	}
	for _, f := range paymentsSchema() {
		if !existing[f.Name] {
			return fmt.Errorf("EnsureSchema: table %s missing column %s", paymentsTable, f.Name)
		}
	}
	return nil
}

// ExistingMessageIDs runs a DISTINCT query over the stored ids. The iterator
// paginates internally.
func (s *Store) ExistingMessageIDs(ctx context.Context) (map[string]struct{}, error) {
	q := s.client.Query(fmt.Sprintf(
		"SELECT DISTINCT message_id FROM `%s.%s.%s`",
		s.projectID, s.datasetID, paymentsTable,
	))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExistingMessageIDs: %w", err)
	}

	ids := make(map[string]struct{})
	for {
		var row struct {
			MessageID string `bigquery:"message_id"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ExistingMessageIDs: iterating: %w", err)
		}
		ids[row.MessageID] = struct{}{}
	}
	return ids, nil
}

// WritePayments streams the whole batch through one inserter call. A
// PutMultiError carries per-row failures, so partially accepted batches are
// reported row by row.
func (s *Store) WritePayments(ctx context.Context, payments []*domain.Payment) store.WriteReport {
	var report store.WriteReport
	if len(payments) == 0 {
		return report
	}

	rows := make([]*PaymentRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, toRow(p))
	}

	inserter := s.client.DatasetInProject(s.projectID, s.datasetID).Table(paymentsTable).Inserter()
	err := inserter.Put(ctx, rows)
	if err == nil {
		report.Created = len(payments)
		return report
	}

	var multi bigquery.PutMultiError
	if errors.As(err, &multi) {
		report.Failed = len(multi)
		report.Created = len(payments) - len(multi)
		for _, rowErr := range multi {
			report.Errors = append(report.Errors,
				fmt.Sprintf("insert row %d: %v", rowErr.RowIndex, rowErr.Error()))
		}
		return report
	}

	report.Failed = len(payments)
	report.Errors = append(report.Errors, fmt.Sprintf("insert %d rows: %v", len(payments), err))
	s.log.Error().Err(err).Int("rows", len(rows)).Msg("Batch insert failed")
	return report
}

func toRow(p *domain.Payment) *PaymentRow {
	return &PaymentRow{
		MessageID:        p.MessageID,
		Service:          string(p.Service),
		Sender:           p.Sender,
		Amount:           p.Amount,
		Currency:         p.Currency,
		CurrencyInferred: p.CurrencyInferred,
		Date:             p.Date,
		DaysAgo:          p.DaysAgo,
		Subject:          p.Subject,
		FromEmail:        p.FromEmail,
		ToEmail:          p.ToEmail,
		ExtractedTS:      p.ExtractedAt,
	}
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// Package sheets implements the payment store on a Google Sheets worksheet.
// The layout matches the tracker sheet: a "Last Run" stamp in A1, headers at
// row 3, data rows appended from row 4. Rows are positional:
// [date, service, sender, "amount currency", message id].
package sheets

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
)

var headers = []interface{}{"Date", "Service", "Sender", "Amount", "Message ID"}

const (
	lastRunRange = "A1"
	headerRange  = "A3:E3"
	dataRange    = "A4:E"
	appendRange  = "A4"

	// cellDateFormat renders dates as "2025, Aug 13".
	cellDateFormat = "2006, Jan 02"
)

// Store implements store.PaymentStore against one spreadsheet.
type Store struct {
	api SheetAPI
	log zerolog.Logger
	now func() time.Time
}

// NewStore creates a Store over the given API. now drives the Last Run
// stamp; pass nil for the wall clock.
func NewStore(api SheetAPI, log zerolog.Logger, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{api: api, log: log, now: now}
}

// EnsureSchema validates the header row, rebuilding the sheet structure when
// it is absent or stale, and stamps the Last Run cell.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stamp := [][]interface{}{{"Last Run: " + s.now().Format(cellDateFormat)}}

	rows, err := s.api.GetRange(ctx, headerRange)
	if err == nil && len(rows) == 1 && headersMatch(rows[0]) {
		if err := s.api.UpdateRange(ctx, lastRunRange, stamp); err != nil {
			return fmt.Errorf("EnsureSchema: stamping last run: %w", err)
		}
		return nil
	}

	if err != nil {
		s.log.Warn().Err(err).Msg("Could not read sheet headers, rebuilding structure")
	} else {
		s.log.Info().Msg("Setting up spreadsheet structure")
	}

	if err := s.api.Clear(ctx); err != nil {
		return fmt.Errorf("EnsureSchema: clearing sheet: %w", err)
	}
	if err := s.api.UpdateRange(ctx, lastRunRange, stamp); err != nil {
		return fmt.Errorf("EnsureSchema: stamping last run: %w", err)
	}
	if err := s.api.UpdateRange(ctx, headerRange, [][]interface{}{headers}); err != nil {
		return fmt.Errorf("EnsureSchema: writing headers: %w", err)
	}
	return nil
}

// ExistingMessageIDs reads every data row and collects column E.
func (s *Store) ExistingMessageIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.api.GetRange(ctx, dataRange)
	if err != nil {
		return nil, fmt.Errorf("ExistingMessageIDs: %w", err)
	}

	ids := make(map[string]struct{})
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		if id, ok := row[4].(string); ok && id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// WritePayments appends the whole batch in one call; the Sheets API appends
// atomically, so a failure here fails every staged record.
func (s *Store) WritePayments(ctx context.Context, payments []*domain.Payment) store.WriteReport {
	var report store.WriteReport
	if len(payments) == 0 {
		return report
	}

	rows := make([][]interface{}, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, paymentRow(p))
	}

	if err := s.api.AppendRows(ctx, appendRange, rows); err != nil {
		report.Failed = len(payments)
		report.Errors = append(report.Errors, fmt.Sprintf("append %d rows: %v", len(payments), err))
		s.log.Error().Err(err).Int("rows", len(rows)).Msg("Batch append failed")
		return report
	}

	report.Created = len(payments)
	return report
}

func headersMatch(row []interface{}) bool {
	if len(row) != len(headers) {
		return false
	}
	for i, h := range headers {
		if row[i] != h {
			return false
		}
	}
	return true
}

// paymentRow renders one positional data row. The date falls back to the raw
// header string when unparseable; amount and currency share a cell.
func paymentRow(p *domain.Payment) []interface{} {
	date := p.Date
	if t, err := mail.ParseDate(p.Date); err == nil {
		date = t.Format(cellDateFormat)
	}

	amount := ""
	if p.Amount != "" {
		amount = p.Amount + " " + p.Currency
	}

	return []interface{}{date, string(p.Service), p.Sender, amount, p.MessageID}
}

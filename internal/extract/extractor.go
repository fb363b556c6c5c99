package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/mailbox"
)

// RunStats counts per-message outcomes across one extraction run. Skips and
// message-local failures are first-class results here rather than log noise.
type RunStats struct {
	Searched   int `json:"searched"`
	Extracted  int `json:"extracted"`
	NotPayment int `json:"skipped_not_payment"`
	NoAmount   int `json:"skipped_no_amount"`
	Failed     int `json:"failed"`
}

// Extractor runs the full mailbox scan: for each configured service, search,
// fetch newest-first, and build payment records, isolating per-message
// failures.
type Extractor struct {
	dialer          mailbox.Dialer
	windowDays      int
	defaultCurrency string
	log             zerolog.Logger
	now             func() time.Time
}

// NewExtractor creates an Extractor. now is the clock used for the search
// window and relative-age labels; pass nil for the wall clock.
func NewExtractor(dialer mailbox.Dialer, windowDays int, defaultCurrency string, log zerolog.Logger, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{
		dialer:          dialer,
		windowDays:      windowDays,
		defaultCurrency: defaultCurrency,
		log:             log,
		now:             now,
	}
}

// ExtractAll scans every configured service and returns the built payments.
// Connection-level failures (dial, login, search) abort the run; the
// connection is always released on the way out. Per-message problems are
// counted in RunStats and never abort.
func (e *Extractor) ExtractAll(ctx context.Context) ([]*domain.Payment, RunStats, error) {
	var stats RunStats

	conn, err := e.dialer.Dial(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("ExtractAll: %w", err)
	}
	defer func() {
		if err := conn.Logout(); err != nil {
			e.log.Warn().Err(err).Msg("Mailbox logout failed")
		}
	}()

	since := e.now().AddDate(0, 0, -e.windowDays)

	var payments []*domain.Payment
	for _, service := range domain.Services {
		addr := domain.ServiceAddresses[service]
		log := e.log.With().Str("service", string(service)).Logger()

		uids, err := conn.Search(ctx, addr, since)
		if err != nil {
			return nil, stats, fmt.Errorf("ExtractAll: searching %s: %w", service, err)
		}

		log.Info().Int("messages", len(uids)).Str("from", addr).Msg("Mailbox search complete")
		stats.Searched += len(uids)

		// Newest first: IMAP returns UIDs in ascending mailbox order.
		for i := len(uids) - 1; i >= 0; i-- {
			uid := uids[i]
			payment, outcome := e.processMessage(ctx, conn, service, uid, log)
			switch outcome {
			case outcomeExtracted:
				payments = append(payments, payment)
				stats.Extracted++
			case outcomeNotPayment:
				stats.NotPayment++
			case outcomeNoAmount:
				stats.NoAmount++
			case outcomeFailed:
				stats.Failed++
			}
		}

		log.Info().Int("extracted", stats.Extracted).Msg("Service scan complete")
	}

	return payments, stats, nil
}

type messageOutcome int

const (
	outcomeExtracted messageOutcome = iota
	outcomeNotPayment
	outcomeNoAmount
	outcomeFailed
)

func (e *Extractor) processMessage(ctx context.Context, conn mailbox.Connection, service domain.Service, uid uint32, log zerolog.Logger) (*domain.Payment, messageOutcome) {
	raw, err := conn.Fetch(ctx, uid)
	if err != nil {
		log.Warn().Err(err).Uint32("uid", uid).Msg("Fetch failed, skipping message")
		return nil, outcomeFailed
	}

	env, err := mailbox.ParseMessage(uid, raw)
	if err != nil {
		log.Warn().Err(err).Uint32("uid", uid).Msg("Parse failed, skipping message")
		return nil, outcomeFailed
	}

	payment, skip := BuildPayment(service, env, e.defaultCurrency, e.now())
	switch skip {
	case SkipNotPayment:
		log.Debug().Uint32("uid", uid).Msg("Not a payment email")
		return nil, outcomeNotPayment
	case SkipNoAmount:
		log.Warn().Uint32("uid", uid).Str("subject", env.Subject).Msg("Payment email without parseable amount")
		return nil, outcomeNoAmount
	}

	log.Info().
		Uint32("uid", uid).
		Str("sender", payment.Sender).
		Str("amount", payment.Amount).
		Str("currency", payment.Currency).
		Bool("currency_inferred", payment.CurrencyInferred).
		Msg("Payment extracted")
	return payment, outcomeExtracted
}

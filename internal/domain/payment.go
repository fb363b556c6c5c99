package domain

import (
	"net/mail"
	"sort"
	"strconv"
	"time"
)

// Service identifies one of the configured payment-notification senders.
// The set is closed: extraction only ever runs against these four.
type Service string

const (
	ServiceWise    Service = "Wise"
	ServicePaypal  Service = "Paypal"
	ServiceRemitly Service = "Remitly"
	ServiceBillcom Service = "Billcom"
)

// Services lists all configured services in their fixed iteration order.
var Services = []Service{ServiceWise, ServicePaypal, ServiceRemitly, ServiceBillcom}

// ServiceAddresses maps each service to the sender address its notification
// emails arrive from. Used to build the mailbox search query.
var ServiceAddresses = map[Service]string{
	ServiceWise:    "noreply@wise.com",
	ServicePaypal:  "service@paypal.com",
	ServiceRemitly: "no-reply@remitly.com",
	ServiceBillcom: "account-services@hq.bill.com",
}

// Currencies is the closed set of currency codes the extractor recognizes.
var Currencies = []string{"USD", "PHP", "EUR", "GBP", "CAD"}

// ValidCurrency reports whether code is one of the recognized currency codes.
func ValidCurrency(code string) bool {
	for _, c := range Currencies {
		if c == code {
			return true
		}
	}
	return false
}

// UnknownSender is the sentinel used when no sender pattern matched.
const UnknownSender = "Unknown Sender"

// Payment is one extracted payment notification. Immutable once built; the
// MessageID is the deduplication key across runs.
type Payment struct {
	Service Service `json:"service"`
	Sender  string  `json:"sender"`

	// Amount is a decimal string with thousands separators stripped.
	// A Payment is only built when both Amount and Currency resolved.
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	// CurrencyInferred marks records whose currency came from the configured
	// default rather than from the email text.
	CurrencyInferred bool `json:"currency_inferred"`

	// Date is the raw RFC-2822 Date header, preserved verbatim.
	Date string `json:"date"`
	// DaysAgo is the derived relative-age label: "Today", "Yesterday",
	// "N days ago" or "Unknown".
	DaysAgo string `json:"days_ago"`

	Subject   string `json:"subject"`
	MessageID string `json:"message_id"`
	FromEmail string `json:"from_email"`
	ToEmail   string `json:"to_email"`

	// ExtractedAt is the wall-clock build time, not the email date.
	ExtractedAt time.Time `json:"extraction_timestamp"`
}

// EventTime parses the raw Date header. Returns the zero time when the
// header is missing or malformed, which sorts such records last.
func (p *Payment) EventTime() time.Time {
	t, err := mail.ParseDate(p.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AmountValue parses Amount as a float for summary totals. Returns 0 for
// anything unparseable; Amount is extractor-validated so that should not occur.
func (p *Payment) AmountValue() float64 {
	v, err := strconv.ParseFloat(p.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}

// SortNewestFirst orders payments by event time, newest first. The sort is
// stable so records with equal (or unparseable) dates keep their input order.
func SortNewestFirst(payments []*Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].EventTime().After(payments[j].EventTime())
	})
}

// SyncResult aggregates the outcome of one sync run. Transient: produced once
// per run and returned to the caller, never persisted.
type SyncResult struct {
	Created           int      `json:"created"`
	SkippedDuplicates int      `json:"skipped_duplicates"`
	Failed            int      `json:"failed"`
	Errors            []string `json:"errors,omitempty"`
}

// RunSummary is the per-run rollup reported by the trigger surface.
type RunSummary struct {
	Services              []string `json:"services"`
	TotalAmount           float64  `json:"total_amount"`
	Currencies            []string `json:"currencies"`
	InferredCurrencyCount int      `json:"inferred_currency_count"`
}

// Summarize derives the run summary from a batch of extracted payments.
func Summarize(payments []*Payment) RunSummary {
	summary := RunSummary{
		Services:   []string{},
		Currencies: []string{},
	}

	seenServices := make(map[Service]bool)
	seenCurrencies := make(map[string]bool)

	for _, p := range payments {
		if !seenServices[p.Service] {
			seenServices[p.Service] = true
			summary.Services = append(summary.Services, string(p.Service))
		}
		if !seenCurrencies[p.Currency] {
			seenCurrencies[p.Currency] = true
			summary.Currencies = append(summary.Currencies, p.Currency)
		}
		if p.CurrencyInferred {
			summary.InferredCurrencyCount++
		}
		summary.TotalAmount += p.AmountValue()
	}

	sort.Strings(summary.Services)
	sort.Strings(summary.Currencies)
	return summary
}

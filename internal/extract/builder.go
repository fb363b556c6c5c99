package extract

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/mailbox"
)

// SkipReason says why a message produced no Payment. Skips are expected
// outcomes, not errors: the classifier gate filters promotional mail and the
// amount gate filters payment-looking mail that carries no parseable amount.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipNotPayment
	SkipNoAmount
)

func (r SkipReason) String() string {
	switch r {
	case SkipNotPayment:
		return "not a payment email"
	case SkipNoAmount:
		return "no amount found"
	default:
		return "none"
	}
}

// BuildPayment assembles a Payment from one message, or reports why it was
// skipped. Subject and body are matched as one surface so notifications that
// put the amount in the subject line still extract.
func BuildPayment(service domain.Service, env *mailbox.Envelope, defaultCurrency string, now time.Time) (*domain.Payment, SkipReason) {
	body := Normalize(env.Text, env.HTML)
	full := strings.TrimSpace(env.Subject + " " + body)

	if !IsPaymentText(full) {
		return nil, SkipNotPayment
	}

	amount, ok := ExtractAmount(full, defaultCurrency)
	if !ok {
		return nil, SkipNoAmount
	}

	return &domain.Payment{
		Service:          service,
		Sender:           ExtractSender(full),
		Amount:           amount.Value,
		Currency:         amount.Currency,
		CurrencyInferred: amount.Inferred,
		Date:             env.Date,
		DaysAgo:          RelativeAge(env.Date, now),
		Subject:          env.Subject,
		MessageID:        env.MessageID(),
		FromEmail:        env.From,
		ToEmail:          env.To,
		ExtractedAt:      now,
	}, SkipNone
}

// RelativeAge renders a human-readable age label from an RFC-2822 date
// header. Parse failure yields "Unknown"; it never fails.
func RelativeAge(dateHeader string, now time.Time) string {
	t, err := mail.ParseDate(dateHeader)
	if err != nil {
		return "Unknown"
	}

	days := int(now.Sub(t).Hours() / 24)
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

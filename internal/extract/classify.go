package extract

import "strings"

// paymentKeywords classify a message as a payment notification. The set is
// intentionally permissive: a false positive still has to survive amount
// extraction, a false negative is a lost payment.
var paymentKeywords = []string{
	"payment",
	"paid",
	"sent you",
	"received",
	"invoice",
	"transfer",
	"money",
	"got paid",
	"wants to pay",
}

// IsPaymentText reports whether the text mentions any payment keyword,
// case-insensitively.
func IsPaymentText(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range paymentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

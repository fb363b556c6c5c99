package extract

import (
	"regexp"
	"strings"
)

// Amount holds the result of amount extraction. Inferred marks amounts whose
// currency came from the configured default rather than from the text.
type Amount struct {
	Value    string
	Currency string
	Inferred bool
}

// amountRule pairs a pattern with a resolver turning its capture groups into
// an Amount. Rules are evaluated in order, first match wins; new service
// formats are added by appending rules, not by branching.
type amountRule struct {
	re      *regexp.Regexp
	resolve func(groups []string, defaultCurrency string) Amount
}

const (
	numberPat       = `([0-9,]+\.?[0-9]*)`
	currencyCodePat = `(USD|PHP|EUR|GBP|CAD)`
)

// amountShapeRe is the strict digit/decimal/thousands-separator shape used by
// the catch-all tie-break to tell amounts apart from other capture groups.
var amountShapeRe = regexp.MustCompile(`^[0-9,]+\.?[0-9]*$`)

// currencyCodeRe finds a recognized currency code anywhere in the text, for
// the symbol-prefixed rule. The symbol itself is never trusted to imply a
// currency.
var currencyCodeRe = regexp.MustCompile(`(?i)\b` + currencyCodePat + `\b`)

var amountRules = []amountRule{
	// "Acme Corp has sent you 6,600 PHP" pins both amount and currency.
	{
		re: regexp.MustCompile(`(?i)has sent you\s+` + numberPat + `\s+` + currencyCodePat),
		resolve: func(groups []string, _ string) Amount {
			return Amount{Value: stripCommas(groups[1]), Currency: strings.ToUpper(groups[2])}
		},
	},
	// Same phrase with the currency code omitted: the configured default applies.
	{
		re: regexp.MustCompile(`(?i)has sent you\s+` + numberPat),
		resolve: func(groups []string, defaultCurrency string) Amount {
			return Amount{Value: stripCommas(groups[1]), Currency: defaultCurrency, Inferred: true}
		},
	},
	// Currency code immediately preceding digits: "PHP 6,600".
	{
		re: regexp.MustCompile(`(?i)\b` + currencyCodePat + `\s*` + numberPat),
		resolve: func(groups []string, _ string) Amount {
			return Amount{Value: stripCommas(groups[2]), Currency: strings.ToUpper(groups[1])}
		},
	},
	// Currency symbol preceding digits. The symbol does not determine the
	// currency: a code elsewhere in the text wins, otherwise the default.
	{
		re:      regexp.MustCompile(`[$₱€£¥]\s*` + numberPat),
		resolve: nil, // handled specially, needs the full text
	},
	// Generic catch-alls: number then code, code then number. Resolved by the
	// tie-break over capture groups.
	{
		re:      regexp.MustCompile(`(?i)` + numberPat + `\s*` + currencyCodePat),
		resolve: nil,
	},
	{
		re:      regexp.MustCompile(`(?i)` + currencyCodePat + `\s*` + numberPat),
		resolve: nil,
	},
}

// ExtractAmount applies the ordered amount rules to normalized text.
// Returns ok=false when no rule matches; the caller then discards the message.
func ExtractAmount(text, defaultCurrency string) (Amount, bool) {
	for i, rule := range amountRules {
		groups := rule.re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		if rule.resolve != nil {
			return rule.resolve(groups, defaultCurrency), true
		}
		if i == symbolRuleIndex {
			return resolveSymbolAmount(groups, text, defaultCurrency), true
		}
		return resolveByTieBreak(groups, defaultCurrency), true
	}
	return Amount{}, false
}

// symbolRuleIndex is the position of the symbol-prefixed rule in amountRules.
const symbolRuleIndex = 3

func resolveSymbolAmount(groups []string, text, defaultCurrency string) Amount {
	amt := Amount{Value: stripCommas(groups[1]), Currency: defaultCurrency, Inferred: true}
	if code := currencyCodeRe.FindString(text); code != "" {
		amt.Currency = strings.ToUpper(code)
		amt.Inferred = false
	}
	return amt
}

// resolveByTieBreak picks the first group with the strict amount shape as the
// value, then the first remaining 3-letter alphabetic group as the currency;
// the configured default fills in when no such group exists.
func resolveByTieBreak(groups []string, defaultCurrency string) Amount {
	amt := Amount{Currency: defaultCurrency, Inferred: true}
	for i, g := range groups[1:] {
		if amountShapeRe.MatchString(g) {
			amt.Value = stripCommas(g)
			for j, other := range groups[1:] {
				if j == i {
					continue
				}
				if len(other) == 3 && isAlpha(other) {
					amt.Currency = strings.ToUpper(other)
					amt.Inferred = false
					break
				}
			}
			break
		}
	}
	return amt
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

// namePat is the character class covering company and person names in the
// notification phrasings, including punctuation seen in legal entity names.
const namePat = `([A-Za-z0-9\s.,\-_&()'"]+?)`

// senderRules are tried in order; the first whose trimmed capture is at least
// three characters long wins.
var senderRules = []*regexp.Regexp{
	// "Hello Name, Company Ltd has sent you 6,600" captures only the company.
	regexp.MustCompile(`(?i)Hello [^,]+,\s*` + namePat + `\s+has sent you\s+[0-9,]+`),
	// "Company Ltd has sent you 6,600" anchored at the start of the text.
	regexp.MustCompile(`(?i)^` + namePat + `\s+has sent you\s+[0-9,]+`),
	regexp.MustCompile(`(?i)from\s+` + namePat + `(?:\s+(?:sent|paid|has|is|wants|received))`),
	regexp.MustCompile(`(?i)` + namePat + `\s+(?:sent you|paid you|has sent|wants to pay)`),
	regexp.MustCompile(`(?i)You got paid by\s+([A-Za-z0-9\s.,\-_&()'"]+)`),
}

// minSenderLen guards against captures like "He" or stray punctuation.
const minSenderLen = 3

// ExtractSender applies the ordered sender rules to normalized text. Never
// fails: when nothing usable matches it returns the UnknownSender sentinel
// defined by the domain package ("Unknown Sender").
func ExtractSender(text string) string {
	for _, re := range senderRules {
		groups := re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		sender := whitespaceRe.ReplaceAllString(strings.TrimSpace(groups[1]), " ")
		sender = strings.Trim(sender, ".,- ")
		if len(sender) >= minSenderLen {
			return sender
		}
	}
	return "Unknown Sender"
}

package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/jaytaylor/html2text"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	softBreakRe   = regexp.MustCompile(`=\r?\n`)
)

// Normalize turns a message body into a single plain-text surface for
// pattern matching. The plain-text part wins when the message offers one;
// otherwise the HTML part is converted, with a regex fallback when the
// converter errors. Never fails: unparseable input degrades to the raw
// payload run through the same cleanup.
func Normalize(text, htmlBody string) string {
	if strings.TrimSpace(text) != "" {
		return cleanText(text)
	}
	if strings.TrimSpace(htmlBody) == "" {
		return ""
	}

	plain, err := html2text.FromString(htmlBody, html2text.Options{OmitLinks: true, TextOnly: true})
	if err != nil || strings.TrimSpace(plain) == "" {
		plain = stripTags(htmlBody)
	}
	return cleanText(plain)
}

// cleanText decodes entities, strips leftover quoted-printable artifacts and
// collapses whitespace runs to single spaces.
func cleanText(s string) string {
	s = html.UnescapeString(s)
	s = softBreakRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "=3D", "=")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripTags is the fallback HTML cleanup: script/style blocks removed
// wholesale, then every remaining tag replaced with a space.
func stripTags(s string) string {
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = styleBlockRe.ReplaceAllString(s, "")
	return htmlTagRe.ReplaceAllString(s, " ")
}

package mailbox

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"strconv"

	"github.com/mnako/letters"
)

// Envelope is one fetched message reduced to what extraction needs. Header
// strings are kept raw for audit; Subject is decoded; Text and HTML hold the
// body parts when the message provides them.
type Envelope struct {
	UID     uint32
	Subject string
	Date    string
	From    string
	To      string
	Text    string
	HTML    string
}

// MessageID renders the transport identifier used as the deduplication key.
func (e *Envelope) MessageID() string {
	return strconv.FormatUint(uint64(e.UID), 10)
}

// ParseMessage parses raw RFC-822 bytes into an Envelope. Header parsing
// failure is the only error; body decode problems degrade to the raw payload
// so a single odd message never aborts a run.
func ParseMessage(uid uint32, raw []byte) (*Envelope, error) {
	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("ParseMessage: reading headers of %d: %w", uid, err)
	}

	env := &Envelope{
		UID:     uid,
		Subject: decodeHeader(m.Header.Get("Subject")),
		Date:    m.Header.Get("Date"),
		From:    m.Header.Get("From"),
		To:      m.Header.Get("To"),
	}

	parsed, err := letters.ParseEmail(bytes.NewReader(raw))
	if err == nil {
		if parsed.Headers.Subject != "" {
			env.Subject = parsed.Headers.Subject
		}
		env.Text = parsed.Text
		env.HTML = parsed.HTML
		return env, nil
	}

	// Body decode failed: coerce the remaining payload to text.
	body, readErr := io.ReadAll(m.Body)
	if readErr == nil {
		env.Text = string(body)
	}
	return env, nil
}

// decodeHeader decodes RFC-2047 encoded words, falling back to the raw
// header when decoding fails.
func decodeHeader(h string) string {
	if h == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(h)
	if err != nil {
		return h
	}
	return decoded
}

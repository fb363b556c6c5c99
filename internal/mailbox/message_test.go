package mailbox

import (
	"strings"
	"testing"
)

const plainMessage = "From: Wise <noreply@wise.com>\r\n" +
	"To: juan@example.com\r\n" +
	"Subject: You received money\r\n" +
	"Date: Wed, 13 Aug 2025 10:30:00 +0000\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Acme Corp has sent you 6,600 PHP\r\n"

const htmlMessage = "From: PayPal <service@paypal.com>\r\n" +
	"To: juan@example.com\r\n" +
	"Subject: =?UTF-8?Q?You_got_paid?=\r\n" +
	"Date: Wed, 13 Aug 2025 11:00:00 +0000\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><body><p>You got paid by Jane Doe</p></body></html>\r\n"

func TestParseMessage_Plain(t *testing.T) {
	env, err := ParseMessage(42, []byte(plainMessage))
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	if env.UID != 42 {
		t.Errorf("UID = %d, want 42", env.UID)
	}
	if env.MessageID() != "42" {
		t.Errorf("MessageID() = %q, want \"42\"", env.MessageID())
	}
	if env.Subject != "You received money" {
		t.Errorf("Subject = %q", env.Subject)
	}
	if env.Date != "Wed, 13 Aug 2025 10:30:00 +0000" {
		t.Errorf("Date header not preserved verbatim: %q", env.Date)
	}
	if !strings.Contains(env.From, "noreply@wise.com") {
		t.Errorf("From = %q", env.From)
	}
	if !strings.Contains(env.Text, "has sent you 6,600 PHP") {
		t.Errorf("Text = %q", env.Text)
	}
}

func TestParseMessage_HTML(t *testing.T) {
	env, err := ParseMessage(7, []byte(htmlMessage))
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	if env.Subject != "You got paid" {
		t.Errorf("Expected decoded subject, got %q", env.Subject)
	}
	if !strings.Contains(env.HTML, "Jane Doe") {
		t.Errorf("HTML part missing, got %q", env.HTML)
	}
}

func TestParseMessage_MalformedHeaders(t *testing.T) {
	if _, err := ParseMessage(1, []byte("not an email at all")); err == nil {
		t.Error("Expected error for malformed headers")
	}
}

func TestDecodeHeader_Fallback(t *testing.T) {
	raw := "=?bogus-charset?Q?xx?="
	if got := decodeHeader(raw); got == "" {
		t.Error("Expected raw header fallback, got empty string")
	}
}

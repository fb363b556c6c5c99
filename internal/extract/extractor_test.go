package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/logger"
	"github.com/dvloznov/payment-tracker/internal/mailbox"
)

// fakeConnection serves canned messages keyed by sender address.
type fakeConnection struct {
	uidsByFrom map[string][]uint32
	messages   map[uint32][]byte
	searchErr  error
	fetchErr   map[uint32]error

	fetchedOrder []uint32
	loggedOut    bool
}

func (f *fakeConnection) Search(ctx context.Context, fromAddr string, since time.Time) ([]uint32, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.uidsByFrom[fromAddr], nil
}

func (f *fakeConnection) Fetch(ctx context.Context, uid uint32) ([]byte, error) {
	f.fetchedOrder = append(f.fetchedOrder, uid)
	if err, ok := f.fetchErr[uid]; ok {
		return nil, err
	}
	raw, ok := f.messages[uid]
	if !ok {
		return nil, errors.New("no such message")
	}
	return raw, nil
}

func (f *fakeConnection) Logout() error {
	f.loggedOut = true
	return nil
}

type fakeDialer struct {
	conn    *fakeConnection
	dialErr error
}

func (f *fakeDialer) Dial(ctx context.Context) (mailbox.Connection, error) {
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	return f.conn, nil
}

func rawMessage(from, subject, date, body string) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: juan@example.com\r\nSubject: %s\r\nDate: %s\r\n"+
			"Content-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from, subject, date, body))
}

func testExtractor(dialer mailbox.Dialer) *Extractor {
	log := logger.NewWithWriter(&bytes.Buffer{})
	now := func() time.Time { return time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC) }
	return NewExtractor(dialer, 15, "PHP", log, now)
}

func TestExtractAll(t *testing.T) {
	conn := &fakeConnection{
		uidsByFrom: map[string][]uint32{
			"noreply@wise.com":   {10, 11},
			"service@paypal.com": {20},
		},
		messages: map[uint32][]byte{
			10: rawMessage("noreply@wise.com", "You received money",
				"Mon, 11 Aug 2025 08:00:00 +0000", "Acme Corp has sent you 6,600 PHP"),
			11: rawMessage("noreply@wise.com", "Newsletter",
				"Tue, 12 Aug 2025 08:00:00 +0000", "See what's new this week."),
			20: rawMessage("service@paypal.com", "You got paid",
				"Wed, 13 Aug 2025 08:00:00 +0000", "You got paid by Jane Doe, 100.50 USD"),
		},
	}
	ext := testExtractor(&fakeDialer{conn: conn})

	payments, stats, err := ext.ExtractAll(context.Background())
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}

	if len(payments) != 2 {
		t.Fatalf("Expected 2 payments, got %d", len(payments))
	}
	if stats.Searched != 3 || stats.Extracted != 2 || stats.NotPayment != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if !conn.loggedOut {
		t.Error("Expected connection to be released")
	}

	// Wise is scanned before Paypal, newest message first within the service.
	if payments[0].Service != domain.ServiceWise || payments[0].MessageID != "10" {
		t.Errorf("First payment = %s/%s, want Wise/10", payments[0].Service, payments[0].MessageID)
	}
	if payments[1].Service != domain.ServicePaypal {
		t.Errorf("Second payment service = %s, want Paypal", payments[1].Service)
	}
	if conn.fetchedOrder[0] != 11 {
		t.Errorf("Expected newest UID fetched first, got order %v", conn.fetchedOrder)
	}
}

func TestExtractAll_MessageFailureIsolated(t *testing.T) {
	conn := &fakeConnection{
		uidsByFrom: map[string][]uint32{
			"noreply@wise.com": {1, 2},
		},
		messages: map[uint32][]byte{
			2: rawMessage("noreply@wise.com", "You received money",
				"Mon, 11 Aug 2025 08:00:00 +0000", "Acme Corp has sent you 500 PHP"),
		},
		fetchErr: map[uint32]error{1: errors.New("boom")},
	}
	ext := testExtractor(&fakeDialer{conn: conn})

	payments, stats, err := ext.ExtractAll(context.Background())
	if err != nil {
		t.Fatalf("A single bad message must not abort the run: %v", err)
	}
	if len(payments) != 1 || stats.Failed != 1 {
		t.Errorf("Expected 1 payment and 1 failure, got %d payments, stats %+v", len(payments), stats)
	}
}

func TestExtractAll_DialFailure(t *testing.T) {
	ext := testExtractor(&fakeDialer{dialErr: errors.New("connection refused")})

	if _, _, err := ext.ExtractAll(context.Background()); err == nil {
		t.Error("Expected dial failure to abort the run")
	}
}

func TestExtractAll_SearchFailure(t *testing.T) {
	conn := &fakeConnection{searchErr: errors.New("connection reset")}
	ext := testExtractor(&fakeDialer{conn: conn})

	_, _, err := ext.ExtractAll(context.Background())
	if err == nil {
		t.Fatal("Expected search failure to abort the run")
	}
	if !conn.loggedOut {
		t.Error("Expected connection released even on failure")
	}
}

package domain

import (
	"testing"
	"time"
)

func TestEventTime(t *testing.T) {
	p := &Payment{Date: "Wed, 13 Aug 2025 10:30:00 +0000"}
	got := p.EventTime()
	want := time.Date(2025, time.August, 13, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("EventTime() = %v, want %v", got, want)
	}
}

func TestEventTime_Malformed(t *testing.T) {
	p := &Payment{Date: "not a date"}
	if !p.EventTime().IsZero() {
		t.Errorf("Expected zero time for malformed date, got %v", p.EventTime())
	}
}

func TestSortNewestFirst(t *testing.T) {
	a := &Payment{MessageID: "1", Date: "Mon, 11 Aug 2025 08:00:00 +0000"}
	b := &Payment{MessageID: "2", Date: "Wed, 13 Aug 2025 08:00:00 +0000"}
	c := &Payment{MessageID: "3", Date: "garbled"}

	payments := []*Payment{a, c, b}
	SortNewestFirst(payments)

	wantOrder := []string{"2", "1", "3"}
	for i, want := range wantOrder {
		if payments[i].MessageID != want {
			t.Errorf("position %d: got message_id %s, want %s", i, payments[i].MessageID, want)
		}
	}
}

func TestValidCurrency(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"USD", true},
		{"PHP", true},
		{"EUR", true},
		{"GBP", true},
		{"CAD", true},
		{"JPY", false},
		{"php", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidCurrency(tt.code); got != tt.want {
			t.Errorf("ValidCurrency(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	payments := []*Payment{
		{Service: ServiceWise, Amount: "6600", Currency: "PHP"},
		{Service: ServiceWise, Amount: "100.50", Currency: "USD", CurrencyInferred: true},
		{Service: ServicePaypal, Amount: "50", Currency: "PHP"},
	}

	summary := Summarize(payments)

	if len(summary.Services) != 2 {
		t.Errorf("Expected 2 distinct services, got %v", summary.Services)
	}
	if len(summary.Currencies) != 2 {
		t.Errorf("Expected 2 distinct currencies, got %v", summary.Currencies)
	}
	if summary.TotalAmount != 6750.50 {
		t.Errorf("Expected total 6750.50, got %v", summary.TotalAmount)
	}
	if summary.InferredCurrencyCount != 1 {
		t.Errorf("Expected 1 inferred currency, got %d", summary.InferredCurrencyCount)
	}
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)
	if summary.Services == nil || summary.Currencies == nil {
		t.Error("Expected empty slices, not nil, for JSON encoding")
	}
	if summary.TotalAmount != 0 {
		t.Errorf("Expected zero total, got %v", summary.TotalAmount)
	}
}

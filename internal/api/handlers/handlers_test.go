package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/config"
	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/pipeline"
)

type fakeRunner struct {
	report  *pipeline.Report
	err     error
	calls   int
	dryRuns int
}

func (f *fakeRunner) Run(_ context.Context, dryRun bool) (*pipeline.Report, error) {
	f.calls++
	if dryRun {
		f.dryRuns++
	}
	return f.report, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		GmailUsername:   "user@gmail.com",
		GmailPassword:   "app-password",
		StoreBackend:    config.BackendNotion,
		NotionToken:     "secret",
		WindowDays:      15,
		DefaultCurrency: "PHP",
	}
}

func TestTrigger_RunsPipeline(t *testing.T) {
	runner := &fakeRunner{report: &pipeline.Report{
		PaymentsProcessed: 2,
		Sync:              domain.SyncResult{Created: 2},
	}}
	h := New(runner, testConfig(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.Trigger(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if runner.calls != 1 {
		t.Errorf("expected one run, got %d", runner.calls)
	}
	if runner.dryRuns != 0 {
		t.Errorf("expected no dry runs, got %d", runner.dryRuns)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "success" {
		t.Errorf("expected success status, got %v", body["status"])
	}
	if body["payments_processed"] != float64(2) {
		t.Errorf("expected 2 payments processed, got %v", body["payments_processed"])
	}
}

func TestTrigger_TestModeSkipsRun(t *testing.T) {
	runner := &fakeRunner{}
	h := New(runner, testConfig(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"test": true}`))
	rec := httptest.NewRecorder()
	h.Trigger(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if runner.calls != 0 {
		t.Errorf("test mode must not run the pipeline, got %d calls", runner.calls)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", body["status"])
	}
	if _, ok := body["config"]; !ok {
		t.Error("expected config presence map in test mode response")
	}
}

func TestTrigger_RunError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("imap: connection refused")}
	h := New(runner, testConfig(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.Trigger(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestTrigger_BadBody(t *testing.T) {
	runner := &fakeRunner{}
	h := New(runner, testConfig(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Trigger(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if runner.calls != 0 {
		t.Errorf("bad body must not run the pipeline, got %d calls", runner.calls)
	}
}

func TestTrigger_MethodNotAllowed(t *testing.T) {
	h := New(&fakeRunner{}, testConfig(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Trigger(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := New(&fakeRunner{}, testConfig(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["service"] != "payment-tracker" {
		t.Errorf("unexpected service name %q", body["service"])
	}
}

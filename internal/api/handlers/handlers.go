// Package handlers exposes the HTTP trigger surface: a POST entrypoint that
// kicks off a run and a health probe.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/api/middleware"
	"github.com/dvloznov/payment-tracker/internal/config"
	"github.com/dvloznov/payment-tracker/internal/pipeline"
)

// PipelineRunner runs one extraction-and-sync cycle.
type PipelineRunner interface {
	Run(ctx context.Context, dryRun bool) (*pipeline.Report, error)
}

// Handler holds the dependencies for all HTTP endpoints.
type Handler struct {
	runner PipelineRunner
	cfg    *config.Config
	log    zerolog.Logger
}

// New creates a Handler.
func New(runner PipelineRunner, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{runner: runner, cfg: cfg, log: log}
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.Trigger)
	mux.HandleFunc("/health", h.Health)
}

type triggerRequest struct {
	Test bool `json:"test"`
}

// Trigger handles POST /. An optional JSON body {"test": true} switches to
// test mode, which only reports configuration health and never opens the
// mailbox or the store.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Test {
		status := h.cfg.Status()
		loaded := true
		for _, ok := range status {
			if !ok {
				loaded = false
				break
			}
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":        "healthy",
			"message":       "Configuration check only, no emails processed",
			"config_loaded": loaded,
			"config":        status,
		})
		return
	}

	report, err := h.runner.Run(r.Context(), false)
	if err != nil {
		h.log.Error().Err(err).Msg("Pipeline run failed")
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "success",
		"payments_processed": report.PaymentsProcessed,
		"stats":              report.Stats,
		"sync":               report.Sync,
		"summary":            report.Summary,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "payment-tracker",
	})
}

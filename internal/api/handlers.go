package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shsdb/reconciler/internal/commitlog"
	"github.com/shsdb/reconciler/internal/dashboard"
	"github.com/shsdb/reconciler/internal/ingestion"
	"github.com/shsdb/reconciler/internal/reconciliation"
)

// Handlers serves the read side: joined records and engine state.
type Handlers struct {
	dashboard *dashboard.Service
	engine    *reconciliation.Engine
	logger    *slog.Logger
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, map[string]string{"error": msg})
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case ingestion.IsInvalidInput(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, commitlog.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, h.logger, status, err.Error())
}

// --- Healthz ---

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// --- GetDashboard ---

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	records, err := h.dashboard.AllMicroData(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"records": records,
		"total":   len(records),
	})
}

// --- GetInstrumentClasses ---

func (h *Handlers) GetInstrumentClasses(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dashboard.InstrumentClassesWithCount(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, counts)
}

// --- GetEngineStatus ---

func (h *Handlers) GetEngineStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.engine.Status())
}

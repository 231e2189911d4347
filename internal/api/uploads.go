package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shsdb/reconciler/internal/ingestion"
)

// uploads serves one ingested file family: the raw files under the family
// root and the decoded records under /records.
type uploads[T any] struct {
	svc      *ingestion.Service[T]
	base     string
	maxBytes int64
	h        *Handlers
}

func newUploads[T any](svc *ingestion.Service[T], base string, maxBytes int64, logger *slog.Logger) *uploads[T] {
	return &uploads[T]{
		svc:      svc,
		base:     base,
		maxBytes: maxBytes,
		h:        &Handlers{logger: logger.With("family", string(svc.Family()))},
	}
}

func (u *uploads[T]) mount(r chi.Router, throttle func(http.Handler) http.Handler) {
	r.With(throttle).Post("/", u.Create)
	r.Get("/", u.ListRaw)
	r.Get("/records", u.ListRecords)
	r.Get("/records/{key}", u.GetRecord)
	r.Get("/{key}", u.GetRaw)
}

// --- Create ---

func (u *uploads[T]) Create(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, u.maxBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		u.h.fail(w, r, err)
		return
	}

	key, err := u.svc.Produce(r.Context(), raw)
	if err != nil {
		u.h.fail(w, r, err)
		return
	}

	w.Header().Set("Location", u.base+"/"+key)
	writeJSON(w, u.h.logger, http.StatusCreated, map[string]string{"key": key})
}

// --- ListRaw ---

func (u *uploads[T]) ListRaw(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := u.svc.WriteAllRaw(r.Context(), &buf); err != nil {
		u.h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// --- GetRaw ---

func (u *uploads[T]) GetRaw(w http.ResponseWriter, r *http.Request) {
	raw, err := u.svc.FindRaw(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		u.h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// --- ListRecords ---

func (u *uploads[T]) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := u.svc.AllRecords(r.Context())
	if err != nil {
		u.h.fail(w, r, err)
		return
	}
	writeJSON(w, u.h.logger, http.StatusOK, map[string]any{
		"records": records,
		"total":   len(records),
	})
}

// --- GetRecord ---

func (u *uploads[T]) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := u.svc.FindRecord(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		u.h.fail(w, r, err)
		return
	}
	writeJSON(w, u.h.logger, http.StatusOK, rec)
}

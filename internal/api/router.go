package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/shsdb/reconciler/internal/dashboard"
	"github.com/shsdb/reconciler/internal/domain"
	"github.com/shsdb/reconciler/internal/ingestion"
	"github.com/shsdb/reconciler/internal/metrics"
	"github.com/shsdb/reconciler/internal/reconciliation"
)

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Reports   *ingestion.Service[domain.Report]
	CSDB      *ingestion.Service[domain.Reference]
	Dashboard *dashboard.Service
	Engine    *reconciliation.Engine
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// MaxUploadBytes caps the body of an upload.
	MaxUploadBytes int64
	// UploadLimiter throttles uploads across all clients. Nil disables it.
	UploadLimiter *rate.Limiter
}

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger.With("component", "api")
	h := &Handlers{
		dashboard: d.Dashboard,
		engine:    d.Engine,
		logger:    logger,
	}
	reports := newUploads(d.Reports, "/api/v1/reports", d.MaxUploadBytes, logger)
	csdb := newUploads(d.CSDB, "/api/v1/csdb", d.MaxUploadBytes, logger)
	throttle := rateLimit(d.UploadLimiter, logger)

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		// Uploads.
		r.Route("/reports", func(r chi.Router) { reports.mount(r, throttle) })
		r.Route("/csdb", func(r chi.Router) { csdb.mount(r, throttle) })

		// Joined records.
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/dashboard/instrument-classes", h.GetInstrumentClasses)

		// Engine.
		r.Get("/engine/status", h.GetEngineStatus)
	})

	return r
}

func rateLimit(l *rate.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				logger.Warn("upload rate limit exceeded", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeError(w, logger, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

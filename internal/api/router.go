package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/BriefMPI/internal/config"
	"github.com/MikeSquared-Agency/BriefMPI/internal/events"
)

// NewRouter builds the public API. ev may be nil when event publishing is
// disabled.
func NewRouter(ev events.Client, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))

	b := base{events: ev, cfg: cfg, logger: logger}
	domains := NewDomainsHandler(b)
	assessments := NewAssessmentsHandler(b)
	batch := NewBatchHandler(b)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/domains", domains.List)
		r.Post("/domains/{domain}/encode", domains.Encode)

		r.Post("/assessments", assessments.Create)
		r.Post("/assessments/export", assessments.Export)
		r.Post("/aggregate", assessments.Aggregate)

		r.Post("/batch", batch.Score)
		r.Post("/batch/export", batch.Export)
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Package httptransport assembles the HTTP surface: middleware chain,
// bounded-context handlers, and operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clubhub/internal/platform/metrics"
	"clubhub/internal/platform/middleware"
)

// Registrar mounts a bounded context's endpoints on the router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires middleware and handlers. handlers are the bounded-context
// registrars; auth may be nil in tests to skip token validation.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, auth middleware.TokenValidator, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.AccessLog(logger))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(chimiddleware.AllowContentType("application/json"))
	if m != nil {
		r.Use(middleware.Observe(m))
	}
	if auth != nil {
		r.Use(middleware.Authenticate(auth, logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		for _, h := range handlers {
			h.Register(api)
		}
	})

	return r
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vytor/cftracker/internal/observability"
)

const defaultRequestTimeout = 10 * time.Second

func (s *Server) Routes() http.Handler {
	observability.RegisterMetrics()

	timeout := s.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(timeout))

		r.Get("/state", s.handleState)
		r.Get("/upsolve", s.handleUpsolve)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/rating", s.handleRating)
		r.Post("/fetch", s.handleFetch)
		r.Put("/notes/{key}", s.handleNote)
		r.Delete("/error", s.handleClearError)
		r.Delete("/handle", s.handleForgetHandle)
	})
	return r
}

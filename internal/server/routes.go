package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrEthical07/goHash/internal/server/handler"
	"github.com/MrEthical07/goHash/metrics/export/prometheus"
)

// Setup builds the router.
func (s *Server) Setup() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestContext)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if len(s.config.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader, "Retry-After"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", handler.Handle(s.health))
	if s.config.Metrics {
		r.Method(http.MethodGet, "/metrics", prometheus.NewPrometheusExporter(s.engine).Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.requestTimeout)
		r.Use(s.limitBody)
		r.Post("/hash", handler.Handle(s.hash))
		r.Post("/verify", handler.Handle(s.verify))
		r.Post("/needs-upgrade", handler.Handle(s.needsUpgrade))
	})

	return r
}

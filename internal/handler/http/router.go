package http

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ngumi22/bds-sub000/pkg/health"
	"github.com/Ngumi22/bds-sub000/pkg/middleware"
)

// RouterConfig carries the router's dependencies and settings.
type RouterConfig struct {
	Service     SearchService
	Health      *health.Handler
	Logger      *slog.Logger
	ServiceName string
	Environment string
	// CacheMaxAge is the Cache-Control lifetime for store responses, in
	// seconds. Zero disables the header.
	CacheMaxAge int
}

// NewRouter builds the HTTP router with the service's middleware stack and
// routes.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(middleware.CORSConfig{Environment: cfg.Environment}))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	searchHandler := NewSearchHandler(cfg.Service, cfg.Logger)
	r.Route("/api/v1/store", func(r chi.Router) {
		if cfg.CacheMaxAge > 0 {
			r.Use(middleware.CacheControl(cfg.CacheMaxAge))
		}
		r.Get("/products", searchHandler.Search)
		r.Get("/filters", searchHandler.Filters)
	})

	return r
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/atcdesk/radioscribe/internal/http/handlers"
	httpmiddleware "github.com/atcdesk/radioscribe/internal/http/middleware"
	"github.com/atcdesk/radioscribe/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger          *logging.Logger
	AudioHandler    *handlers.AudioHandler
	MessagesHandler *handlers.MessagesHandler
	MetricsHandler  http.Handler
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.MessagesHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Get("/metrics", cfg.MetricsHandler.ServeHTTP)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/audio", cfg.AudioHandler.Upload)
		v1.Post("/messages", cfg.MessagesHandler.Post)
	})

	return r
}

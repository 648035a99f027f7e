package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/botfactory/botfactory/engine/internal/api/handlers"
	"github.com/botfactory/botfactory/engine/internal/api/middleware"
	"github.com/botfactory/botfactory/engine/internal/config"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(h *handlers.Handlers, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.ClientExtractor)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Client-Id", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/bots", func(r chi.Router) {
			r.Get("/", h.ListBots)
			r.Post("/", h.CreateBot)
			r.Route("/{botID}", func(r chi.Router) {
				r.Get("/", h.GetBot)
				r.Patch("/", h.UpdateBot)
				r.Put("/", h.UpdateBot)
				r.Delete("/", h.DeleteBot)
				r.Post("/activate", h.ActivateBot)
				r.Post("/deactivate", h.DeactivateBot)
				r.Post("/messages", h.HandleMessage)
				r.Get("/traces", h.ListTraces)
			})
		})
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "botfactory-engine",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
		})
	}
}

package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/FerryF19999/chatinterface/internal/api/middleware"
	"github.com/FerryF19999/chatinterface/internal/handlers"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - allow all origins (dashboards and agents connect from anywhere)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	// State
	r.Get("/snapshot", h.Snapshot)
	r.Get("/participants", h.ListParticipants)
	r.Get("/participants/{id}", h.GetParticipant)
	r.Post("/participants/{id}/login", h.Login)
	r.Post("/participants/{id}/logout", h.Logout)
	r.Post("/participants/{id}/status", h.SetStatus)

	// Chat
	r.Get("/messages", h.ListMessages)
	r.Post("/messages", h.SendMessage)
	r.Post("/messages/{id}/read", h.MarkRead)
	r.Get("/activities", h.ListActivities)
	r.Post("/activities", h.RecordActivity)

	// Command dispatch
	r.Post("/agents/{id}/command", h.DispatchCommand)
	r.Post("/agents/{id}/owner-command", h.DispatchOwnerCommand)

	// Push channel
	r.Get("/events", h.Events)

	return r
}

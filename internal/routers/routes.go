package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"podium/internal/handlers"
	"podium/internal/metrics"
)

// NewRouter assembles the service router.
func NewRouter(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Use(metrics.Middleware("podium"))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())

	SessionRoutes(r, h)

	return r
}

func SessionRoutes(r *chi.Mux, h *handlers.Handlers) {
	r.Route("/api/v1/session", func(r chi.Router) {
		r.Post("/start", h.StartSessionHandler)
		r.Post("/end", h.EndSessionHandler)
		r.Post("/feedback/speech", h.SpeechFeedbackHandler)
		r.Post("/feedback/visual", h.VisualFeedbackHandler)
		r.Post("/transcript", h.TranscriptHandler)
		r.Post("/simulate/visual", h.SimulateVisualHandler)
		r.Get("/history", h.HistoryHandler)
		r.HandleFunc("/live", h.LiveWS)
	})

	r.Get("/api/v1/rating", h.RatingHandler)
}

package vision

import (
	"net/http"

	"github.com/NutriVision/NV-Backend/internal/auth"
	"github.com/NutriVision/NV-Backend/internal/middleware"
	"github.com/NutriVision/NV-Backend/internal/session"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handlers, reg *session.Registry) http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Get("/health", h.HealthHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(session.VisitMiddleware(reg))
		r.Post("/analyze", h.AnalyzeHandler)
	})

	return r
}

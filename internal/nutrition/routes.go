package nutrition

import (
	"net/http"

	"github.com/NutriVision/NV-Backend/internal/auth"
	"github.com/NutriVision/NV-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handlers) http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	// Search works signed-out; history is only written for signed-in users.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalSessionMiddleware(sessionFetcher))
		r.Get("/search", h.SearchHandler)
	})

	return r
}

package admin

import (
	"net/http"

	"github.com/NutriVision/NV-Backend/internal/auth"
	"github.com/NutriVision/NV-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.AdminMiddleware(sessionFetcher))
		r.Get("/users", UsersHandler)
		r.Get("/users/{id}/history", UserHistoryHandler)
		r.Patch("/users/{id}", UpdateUserHandler)
		r.Get("/analytics", AnalyticsHandler)
		r.Get("/messages", MessagesHandler)
		r.Get("/messages/export", ExportMessagesHandler)
	})

	return r
}

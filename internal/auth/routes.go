package auth

import (
	"net/http"

	"github.com/NutriVision/NV-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handlers) http.Handler {
	r := chi.NewRouter()
	sessionFetcher := SessionInfo{}

	r.Post("/register", h.RegisterHandler)
	r.Post("/login", h.LoginHandler)
	r.Post("/forgot-password", h.ForgotPasswordHandler)
	r.Post("/reset-password", h.ResetPasswordHandler)
	r.Get("/oauth/google", h.GoogleLoginHandler)
	r.Get("/oauth/google/callback", h.GoogleCallbackHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/logout", h.LogoutHandler)
		r.Get("/me", h.MeHandler)
		r.Post("/update-password", h.UpdatePasswordHandler)
	})

	return r
}

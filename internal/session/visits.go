package session

import (
	"net/http"

	"github.com/NutriVision/NV-Backend/internal/utils"
)

// VisitMiddleware counts authenticated page loads toward the session's
// heartbeat row. Mounted behind SessionMiddleware so the session ID is
// already in the request context.
func VisitMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessionID, ok := utils.GetSessionIDFromContext(r.Context()); ok {
				reg.PageVisit(sessionID)
			}
			next.ServeHTTP(w, r)
		})
	}
}

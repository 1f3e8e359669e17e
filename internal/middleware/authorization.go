package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireAdmin gates a route to users whose token carries the admin flag.
// Must run after AuthMiddleware.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(r.Context()) {
				userID, _ := GetUserID(r.Context())
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("user_id", userID),
					zap.String("path", r.URL.Path),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

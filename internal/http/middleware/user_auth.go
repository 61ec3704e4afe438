package middleware

import (
	"net/http"
	"strings"

	"github.com/healthconsult/telehealth-platform/internal/identity"
)

// UserIdentity binds the authenticated user id from the X-User-Id header
// into the request context. The gateway in front of the API verifies the
// session and forwards the id; requests without one are rejected.
func UserIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
			if userID == "" {
				http.Error(w, "missing user identity", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithUserID(r.Context(), userID)))
		})
	}
}

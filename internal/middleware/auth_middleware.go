package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vdsasi/NoteSharingApp/internal/domain"
	"github.com/vdsasi/NoteSharingApp/internal/service"
	"github.com/vdsasi/NoteSharingApp/pkg/response"
)

type contextKey string

const userKey contextKey = "user"

// AuthMiddleware resolves the requester from the session cookie (or a
// bearer token carrying the same session id) and rejects anonymous calls.
func AuthMiddleware(authService *service.AuthService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := sessionFromRequest(r, cookieName)
			if sessionID == "" {
				response.Unauthorized(w, "No session provided")
				return
			}

			user, err := authService.ResolveCurrentUser(r.Context(), sessionID)
			if err != nil {
				response.Unauthorized(w, "Invalid session")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// GetUser returns the authenticated user stored by AuthMiddleware, or nil
// on unauthenticated routes.
func GetUser(r *http.Request) *domain.User {
	user, ok := r.Context().Value(userKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

func GetUserID(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return ""
}

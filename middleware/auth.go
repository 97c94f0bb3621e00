package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/chaperone-app/chaperone-api/auth"
	"github.com/chaperone-app/chaperone-api/models"
	"github.com/chaperone-app/chaperone-api/store"
)

type contextKey string

const userKey contextKey = "user"

// RequireUser verifies the bearer token, loads the user it belongs to and
// attaches them to the request context. Inactive accounts are rejected with
// 403, everything else auth-related with 401.
func RequireUser(users *store.Store, secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			tokenStr := header
			if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
				tokenStr = parts[1]
			}

			email, err := auth.VerifyToken(secret, tokenStr)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			user, err := users.UserByEmail(r.Context(), email)
			if err != nil {
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}
			if !user.IsActive {
				http.Error(w, "Inactive user", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		}
	}
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom extracts the authenticated user placed by RequireUser.
func UserFrom(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(userKey).(*models.User)
	return user, ok
}

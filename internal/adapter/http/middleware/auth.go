package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/infrastructure/auth"
)

// UserSource resolves the current state of a user identified by a token.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthMiddleware verifies the bearer token, resolves the user's current
// record and places it on the request context. The lookup means a
// deactivated user loses access immediately instead of at token expiry, and
// a role change takes effect on the next request. Role checks happen inside
// the use cases; the middleware only establishes identity.
func AuthMiddleware(jwtManager *auth.JWTManager, users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			if !user.Active {
				http.Error(w, "user is deactivated", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), user)))
		})
	}
}

// StaticUser injects a fixed user into every request. Used when
// authentication is disabled, so the use case authorization layer still sees
// an identity.
func StaticUser(user *domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), user)))
		})
	}
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/infrastructure/auth"
)

type fakeUserSource struct {
	users map[string]*domain.User
}

func (f *fakeUserSource) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func TestAuthMiddleware_ActiveUserPasses(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	stored := &domain.User{ID: "u-1", Email: "ana@store.test", Role: domain.RoleGerente, Active: true}
	users := &fakeUserSource{users: map[string]*domain.User{"u-1": stored}}

	token, err := manager.Generate(stored)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var got *domain.User
	handler := AuthMiddleware(manager, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = domain.UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got == nil || got.ID != "u-1" || got.Role != domain.RoleGerente {
		t.Fatalf("expected stored user on context, got %+v", got)
	}
}

func TestAuthMiddleware_DeactivatedUserRejected(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	stored := &domain.User{ID: "u-1", Email: "ana@store.test", Role: domain.RoleGerente, Active: true}
	users := &fakeUserSource{users: map[string]*domain.User{"u-1": stored}}

	// Token issued while the user was still active.
	token, err := manager.Generate(stored)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	stored.Active = false

	called := false
	handler := AuthMiddleware(manager, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deactivated user, got %d", rr.Code)
	}
	if called {
		t.Fatal("handler must not run for a deactivated user")
	}
}

func TestAuthMiddleware_UnknownUserRejected(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	users := &fakeUserSource{users: map[string]*domain.User{}}

	token, err := manager.Generate(&domain.User{ID: "ghost", Email: "ghost@store.test", Role: domain.RoleVendedor})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	handler := AuthMiddleware(manager, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", rr.Code)
	}
}

func TestAuthMiddleware_MissingOrMalformedHeader(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	users := &fakeUserSource{users: map[string]*domain.User{}}
	handler := AuthMiddleware(manager, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

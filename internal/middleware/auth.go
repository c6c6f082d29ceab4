package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jmalik/taskly-backend/internal/auth"
	"github.com/jmalik/taskly-backend/internal/models"
)

type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "token"
)

// UserResolver looks up a user by id, requiring raw to be one of their
// active session tokens. Implemented by services.UserService.
type UserResolver interface {
	GetByIDAndToken(ctx context.Context, id primitive.ObjectID, raw string) (*models.User, error)
}

// Auth gates protected routes. It verifies the bearer token's signature
// and expiry, resolves the user and confirms the token has not been
// revoked, then attaches both to the request context. Every failure mode
// gets the same 401 body.
func Auth(jwtSecret []byte, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				unauthorized(w)
				return
			}

			userID, err := auth.UserIDFromToken(raw, jwtSecret)
			if err != nil {
				unauthorized(w)
				return
			}

			id, err := primitive.ObjectIDFromHex(userID)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := resolver.GetByIDAndToken(r.Context(), id, raw)
			if err != nil || user == nil {
				unauthorized(w)
				return
			}

			ctx := WithUser(r.Context(), user)
			ctx = WithToken(ctx, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"please authenticate"}`))
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user, or nil outside the auth guard.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func WithToken(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, tokenKey, raw)
}

// TokenFrom returns the raw session token used on this request.
func TokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

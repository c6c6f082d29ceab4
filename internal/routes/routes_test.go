package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jmalik/taskly-backend/internal/handlers"
	"github.com/jmalik/taskly-backend/internal/middleware"
	"github.com/jmalik/taskly-backend/internal/models"
	"github.com/jmalik/taskly-backend/internal/services"
)

type noUserResolver struct{}

func (noUserResolver) GetByIDAndToken(context.Context, primitive.ObjectID, string) (*models.User, error) {
	return nil, services.ErrNotFound
}

func testRouter() *chi.Mux {
	r := chi.NewRouter()
	SetupRoutes(r,
		handlers.NewUserHandler(nil, nil),
		handlers.NewTaskHandler(nil),
		middleware.Auth([]byte("test-secret"), noUserResolver{}),
	)
	return r
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	t.Parallel()

	r := testRouter()

	protected := []struct{ method, path string }{
		{http.MethodPost, "/users/logout"},
		{http.MethodPost, "/users/logoutAll"},
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/me"},
		{http.MethodGet, "/users/64f1b7a2c9e77a0012345678"},
		{http.MethodPatch, "/users/me"},
		{http.MethodDelete, "/users/me"},
		{http.MethodPost, "/users/me/avatar"},
		{http.MethodDelete, "/users/me/avatar"},
		{http.MethodPost, "/tasks"},
		{http.MethodGet, "/tasks"},
		{http.MethodGet, "/tasks/64f1b7a2c9e77a0012345678"},
		{http.MethodPatch, "/tasks/64f1b7a2c9e77a0012345678"},
		{http.MethodDelete, "/tasks/64f1b7a2c9e77a0012345678"},
	}
	for _, route := range protected {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestPublicRoutes_SkipAuth(t *testing.T) {
	t.Parallel()

	r := testRouter()

	// Register is public: an invalid body fails validation, not auth.
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Avatar fetch is public: a bad id is 404, not 401.
	req = httptest.NewRequest(http.MethodGet, "/users/nope/avatar", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIDocs_Served(t *testing.T) {
	t.Parallel()

	r := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api-docs", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "openapi")
}

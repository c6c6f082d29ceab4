package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jmalik/taskly-backend/internal/auth"
	"github.com/jmalik/taskly-backend/internal/models"
	"github.com/jmalik/taskly-backend/internal/services"
)

// stubResolver resolves a single user, and only for tokens in its active
// set, mirroring the real lookup.
type stubResolver struct {
	user *models.User
}

func (s *stubResolver) GetByIDAndToken(_ context.Context, id primitive.ObjectID, raw string) (*models.User, error) {
	if s.user != nil && s.user.ID == id && s.user.HasToken(raw) {
		return s.user, nil
	}
	return nil, services.ErrNotFound
}

func newStub(t *testing.T, secret []byte) (*stubResolver, string) {
	t.Helper()

	id := primitive.NewObjectID()
	token, err := auth.GenerateToken(id.Hex(), secret)
	require.NoError(t, err)

	return &stubResolver{user: &models.User{
		ID:     id,
		Name:   "Andrew",
		Tokens: []models.SessionToken{{Token: token}},
	}}, token
}

func runGuard(secret []byte, resolver UserResolver, authHeader string) (*httptest.ResponseRecorder, *models.User, string) {
	var gotUser *models.User
	var gotToken string
	handler := Auth(secret, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFrom(r.Context())
		gotToken = TokenFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, gotUser, gotToken
}

func TestAuth_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	resolver, token := newStub(t, secret)

	rec, user, raw := runGuard(secret, resolver, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	require.Equal(t, resolver.user.ID, user.ID)
	require.Equal(t, token, raw)
}

func TestAuth_MissingHeader(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	resolver, _ := newStub(t, secret)

	rec, user, _ := runGuard(secret, resolver, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, user)
	require.JSONEq(t, `{"error":"please authenticate"}`, rec.Body.String())
}

func TestAuth_MalformedHeader(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	resolver, token := newStub(t, secret)

	rec, _, _ := runGuard(secret, resolver, "Token "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_BadSignature(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	resolver, _ := newStub(t, secret)

	foreign, err := auth.GenerateToken(resolver.user.ID.Hex(), []byte("other-secret"))
	require.NoError(t, err)

	rec, _, _ := runGuard(secret, resolver, "Bearer "+foreign)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RevokedToken(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	resolver, token := newStub(t, secret)

	// Valid signature, but no longer in the user's active set.
	resolver.user.Tokens = nil

	rec, _, _ := runGuard(secret, resolver, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

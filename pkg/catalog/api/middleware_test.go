package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalkit/catalog/pkg/catalog"
)

func principalEcho(captured *catalog.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestPrincipal_HeaderFallback(t *testing.T) {
	var got catalog.Principal
	handler := Principal(nil)(principalEcho(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", "alice")
	req.Header.Set("X-User-Name", "Alice")
	req.Header.Set("X-User-Email", "alice@example.com")
	req.Header.Set("X-User-Role", "admin")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", got.UID)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.True(t, got.IsAdmin())
}

func TestPrincipal_Anonymous(t *testing.T) {
	var got catalog.Principal
	handler := Principal(nil)(principalEcho(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, got.UID)
	assert.False(t, got.IsAdmin())
}

func TestPrincipal_FromToken(t *testing.T) {
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	_, tokenString, err := tokenAuth.Encode(map[string]interface{}{
		"sub":   "bob",
		"name":  "Bob",
		"email": "bob@example.com",
		"role":  "editor",
	})
	require.NoError(t, err)

	var got catalog.Principal
	handler := jwtauth.Verifier(tokenAuth)(Principal(tokenAuth)(principalEcho(&got)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "BEARER "+tokenString)
	// A header identity must not shadow the verified token.
	req.Header.Set("X-User-Id", "mallory")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", got.UID)
	assert.Equal(t, "editor", got.Role)
}

func TestRequirePrincipal(t *testing.T) {
	handler := Principal(nil)(RequirePrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("rejects anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("passes identified callers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User-Id", "alice")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

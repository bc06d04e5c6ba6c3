package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-not-for-production"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	m := NewAuthMiddleware(testSecret)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetUserID(r.Context())))
	})

	serve := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		m.Handler(next).ServeHTTP(rec, req)
		return rec
	}

	t.Run("resolves a valid token to its subject", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		rec := serve("Bearer " + token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve("").Code)
	})

	t.Run("rejects a non-bearer header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve("Basic dXNlcjpwYXNz").Code)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		token := signToken(t, "some-other-secret", jwt.MapClaims{"sub": "user-1"})
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})

	t.Run("rejects a token without a subject", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})

	t.Run("rejects a disallowed signing method", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"sub": "user-1",
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer not.a.token").Code)
	})
}

func TestGetUserID(t *testing.T) {
	t.Run("returns empty without an identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Equal(t, "", GetUserID(req.Context()))
	})
}

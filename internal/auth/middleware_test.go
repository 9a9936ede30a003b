package auth

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAuthTestRouter(tm *TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	echo := func(c *gin.Context) {
		c.String(http.StatusOK, strconv.FormatInt(UserIDFromContext(c), 10))
	}
	r.GET("/private", RequireAuth(tm), echo)
	r.GET("/public", OptionalAuth(tm), echo)
	return r
}

func TestRequireAuth(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	r := newAuthTestRouter(tm)

	// No token.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Tampered token.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token.
	token, err := tm.Issue(7)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "7", w.Body.String())
}

func TestOptionalAuthNeverFails(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	r := newAuthTestRouter(tm)

	// No token: anonymous.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "0", w.Body.String())

	// Invalid token: still anonymous, not an error.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "0", w.Body.String())

	// Valid token: viewer resolved.
	token, err := tm.Issue(7)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "7", w.Body.String())
}

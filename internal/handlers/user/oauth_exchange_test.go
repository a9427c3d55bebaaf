package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestGoogleAuthURLRequiresState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(nil)
	r.GET("/api/auth/google/url", h.GoogleAuthURL)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/url", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleAuthURLCarriesState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(nil)
	r.GET("/api/auth/google/url", h.GoogleAuthURL)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/url?state=abc123", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.URL, "state=abc123")
	require.Contains(t, resp.URL, "accounts.google.com")
}

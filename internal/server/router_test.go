package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upsign/service/internal/auth"
	"github.com/upsign/service/internal/config"
)

const allowedOrigin = "http://localhost:5500"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		PublicKey:      "public_abc",
		PrivateKey:     "private_xyz",
		URLEndpoint:    "https://ik.imagekit.io/demo",
		AuthPath:       "/auth",
		TokenTTL:       30 * time.Minute,
		AllowedOrigins: []string{allowedOrigin, "https://example.com"},
	}
	svc := auth.NewService(auth.NewHMACSigner(cfg.PrivateKey), cfg.TokenTTL)
	return NewRouter(cfg, auth.NewHandler(svc), zerolog.Nop())
}

func TestAuthFromAllowedOrigin(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("Origin", allowedOrigin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))

	var p auth.Parameters
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.NoError(t, p.Validate())
	assert.True(t, p.ExpiresAt().After(time.Now()))
}

func TestAuthFromDisallowedOrigin(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// The server still answers; the browser withholds the body.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	tests := []struct {
		name      string
		origin    string
		method    string
		wantAllow bool
	}{
		{name: "allowed origin GET", origin: allowedOrigin, method: http.MethodGet, wantAllow: true},
		{name: "allowed origin POST", origin: allowedOrigin, method: http.MethodPost, wantAllow: true},
		{name: "allowed origin DELETE", origin: allowedOrigin, method: http.MethodDelete},
		{name: "disallowed origin", origin: "https://evil.example", method: http.MethodGet},
	}
	r := newTestRouter(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/auth", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", tt.method)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get("Access-Control-Allow-Origin")
			if tt.wantAllow {
				assert.Equal(t, tt.origin, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ik-auth", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/auth", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSwaggerDoc(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"/auth"`)
}

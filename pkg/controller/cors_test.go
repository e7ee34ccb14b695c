package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/controller"
)

func TestWithCORS_Preflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodOptions, "/v1/runs", nil)
	req.Header.Set("Origin", "https://lab.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	controller.WithCORS([]string{"*"}, next).ServeHTTP(rec, req)

	require.False(t, called, "preflight must not reach the API")
	res := rec.Result()
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	require.Empty(t, res.Header.Get("Access-Control-Allow-Credentials"), "wildcard origins never allow credentials")
	require.Contains(t, res.Header.Get("Access-Control-Allow-Methods"), http.MethodDelete)
	require.Contains(t, res.Header.Get("Access-Control-Allow-Headers"), "Authorization")
	require.Equal(t, "600", res.Header.Get("Access-Control-Max-Age"))
}

func TestWithCORS_ListedOrigins(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := controller.WithCORS([]string{"https://dashboard.example"}, next)

	tests := []struct {
		name        string
		origin      string
		allowOrigin string
		credentials string
	}{
		{name: "listed", origin: "https://dashboard.example", allowOrigin: "https://dashboard.example", credentials: "true"},
		{name: "unlisted", origin: "https://evil.example"},
		{name: "same origin", origin: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/barangays", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			res := rec.Result()
			require.Equal(t, http.StatusTeapot, res.StatusCode)
			require.Equal(t, tt.allowOrigin, res.Header.Get("Access-Control-Allow-Origin"))
			require.Equal(t, tt.credentials, res.Header.Get("Access-Control-Allow-Credentials"))
			require.Equal(t, controller.RequestIDHeader, res.Header.Get("Access-Control-Expose-Headers"))
		})
	}
}

func TestWithCORS_PlainOptionsReachesHandler(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	rec := httptest.NewRecorder()
	controller.WithCORS([]string{"*"}, next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/runs", nil))

	require.True(t, called)
}

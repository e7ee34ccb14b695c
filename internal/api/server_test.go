package api_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"wastepolicy/internal/api"
	"wastepolicy/internal/api/handler/v1handler"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/metrics"
)

func publicKey(t *testing.T) string {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func newTestServer(t *testing.T, ping func(context.Context) error) *httptest.Server {
	t.Helper()
	_ = logger.Setup(logger.DevelopmentEnvironment, "")

	reg := prometheus.NewRegistry()
	srv, err := api.NewServer(api.Deps{
		Deps:       v1handler.Deps{Profiles: domain.DefaultProfiles()},
		Ping:       ping,
		Metrics:    metrics.New(reg),
		Registerer: reg,
	}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: publicKey(t)},
		RequestTimeout:    5 * time.Second,
		MetricsPath:       "/metrics",
		AllowedOrigins:    []string{"*"},
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	res, err := http.Get(url) //nolint: noctx
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res, string(body)
}

func TestNewServer(t *testing.T) {
	ts := newTestServer(t, func(context.Context) error { return nil })

	tests := []struct {
		path   string
		status int
	}{
		{path: "/specs/v1.yaml", status: http.StatusOK},
		{path: "/healthz", status: http.StatusOK},
		{path: "/v1/barangays", status: http.StatusUnauthorized},
		{path: "/metrics", status: http.StatusOK},
		{path: "/debug/pprof/", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, _ := get(t, ts.URL+tt.path)
			require.Equal(t, tt.status, res.StatusCode)
			require.NotEmpty(t, res.Header.Get("X-Request-Id"))
		})
	}

	res, _ := get(t, ts.URL+"/v1/barangays")
	require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	// requests made above are visible on the server's own registry
	_, body := get(t, ts.URL+"/metrics")
	require.Contains(t, body, "wastepolicy_http_requests_total")
}

func TestNewServer_Unhealthy(t *testing.T) {
	ts := newTestServer(t, func(context.Context) error { return errors.New("connection refused") })

	res, body := get(t, ts.URL+"/healthz")
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	require.JSONEq(t, `{"status":"unavailable"}`, body)
}

func TestNewServer_InvalidKey(t *testing.T) {
	_, err := api.NewServer(api.Deps{Registerer: prometheus.NewRegistry()}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: "garbage"},
	})
	require.Error(t, err)
}

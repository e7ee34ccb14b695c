package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/controller"
)

func TestPprofMux(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   int
	}{
		{"/debug/pprof/", "/debug/pprof/", http.StatusOK},
		{"/debug/pprof", "/debug/pprof/cmdline", http.StatusOK},
		{"debug/pprof/", "/debug/pprof/goroutine?debug=1", http.StatusOK},
		{"/debug/pprof/", "/debug/pprof/heap?debug=1", http.StatusOK},
		{"/debug/pprof/", "/debug/pprof/no-such-profile", http.StatusNotFound},
		{"/debug/pprof/", "/v1/runs", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			controller.PprofMux(tt.prefix).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

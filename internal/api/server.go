// Package api assembles the HTTP server of the waste policy lab: the v1 API,
// its OpenAPI document and Swagger UI, a health check, Prometheus metrics
// and pprof.
package api

import (
	"cmp"
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"wastepolicy/internal/api/handler/v1handler"
	"wastepolicy/internal/config"
	"wastepolicy/pkg/controller"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/metrics"
)

//go:embed specs/v1.yaml
var v1Spec []byte

const (
	pprofPrefix = "/debug/pprof/"
	healthPath  = "/healthz"

	timeoutBody = `{"code":"TIMEOUT","message":"request timed out"}`
)

// Options configures the HTTP server.
type Options struct {
	SecHandlerOptions *v1handler.SecHandlerOptions

	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// RequestTimeout bounds API requests. Metrics and pprof are exempt so
	// CPU profiles can run longer than an API call.
	RequestTimeout time.Duration
	MetricsPath    string
	AllowedOrigins []string
}

// NewOptions maps the http and jwt config sections to Options.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SecHandlerOptions: v1handler.NewSecHandlerOptions(cfg),

		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,

		RequestTimeout: cfg.HTTP.RequestTimeout,
		MetricsPath:    cfg.HTTP.MetricsPath,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}
}

// Deps are the services behind the server.
type Deps struct {
	v1handler.Deps

	// Ping reports whether the database is reachable. Nil makes /healthz
	// always healthy.
	Ping func(ctx context.Context) error
	// Metrics receives HTTP request metrics. Nil disables them.
	Metrics *metrics.Metrics
	// Registerer is where the OpenTelemetry exporter registers and, when it
	// is also a Gatherer, what the metrics endpoint serves. Nil means the
	// Prometheus default registry.
	Registerer prometheus.Registerer
}

// metricsHandler bridges otel instruments to Prometheus and returns the
// scrape handler.
func metricsHandler(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)))

	if g, ok := reg.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{Registry: reg}), nil
	}

	return promhttp.Handler(), nil
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				logger.Warn(r.Context(), "health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))

				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// apiHandler serves the docs, the health check and the v1 API.
func apiHandler(deps Deps, opts Options) (http.Handler, error) {
	secHandler, err := v1handler.NewSecHandler(opts.SecHandlerOptions)
	if err != nil {
		return nil, fmt.Errorf("could not create sec handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /specs/v1.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	mux.Handle("/v1/docs/", v5emb.New("Waste Segregation Policy Lab", "/specs/v1.yaml", "/v1/docs/"))
	mux.Handle("GET "+healthPath, healthHandler(deps.Ping))
	mux.Handle("/v1/", http.StripPrefix("/v1", v1handler.New(deps.Deps).Routes(secHandler)))

	return controller.WithCORS(opts.AllowedOrigins, mux), nil
}

// NewServer builds the server. Every request is access-logged and, when
// deps.Metrics is set, counted. API requests are additionally bounded by
// opts.RequestTimeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	scrape, err := metricsHandler(deps.Registerer)
	if err != nil {
		return nil, err
	}
	v1, err := apiHandler(deps, opts)
	if err != nil {
		return nil, err
	}
	if opts.RequestTimeout > 0 {
		v1 = http.TimeoutHandler(v1, opts.RequestTimeout, timeoutBody)
	}
	metricsPath := cmp.Or(opts.MetricsPath, "/metrics")

	mux := http.NewServeMux()
	mux.Handle(metricsPath, scrape)
	mux.Handle(pprofPrefix, controller.PprofMux(pprofPrefix))
	mux.Handle("/", v1)

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = controller.WithMetrics(deps.Metrics, handler)
	}
	handler = controller.WithLogger(handler, metricsPath, pprofPrefix, healthPath)

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}

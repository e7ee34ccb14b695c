// Package metrics holds the Prometheus collectors shared across the
// application: simulation throughput, training progress, run lifecycle and
// HTTP latency.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// RunBuckets covers run durations from a tenth of a second to about half an hour.
var RunBuckets = prometheus.ExponentialBuckets(0.1, 2, 15) //nolint: gochecknoglobals

var (
	global     *Metrics  //nolint: gochecknoglobals
	globalOnce sync.Once //nolint: gochecknoglobals
)

// Metrics groups the application collectors.
type Metrics struct {
	TicksTotal    *prometheus.CounterVec
	QuartersTotal prometheus.Counter
	EpisodesTotal prometheus.Counter
	EpisodeReward prometheus.Histogram
	RunsTotal     *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	RunsInFlight  *prometheus.GaugeVec
	HTTPRequests  *prometheus.CounterVec
	HTTPLatency   *prometheus.HistogramVec
}

// Default returns the process-wide collectors, registering them on the
// default registerer on first use.
func Default() *Metrics {
	globalOnce.Do(func() {
		global = New(prometheus.DefaultRegisterer)
	})

	return global
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TicksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wastepolicy_abm_ticks_total",
			Help: "Total number of simulated ticks per barangay",
		}, []string{"barangay"}),
		QuartersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "wastepolicy_env_quarters_total",
			Help: "Total number of environment decision steps",
		}),
		EpisodesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "wastepolicy_rl_episodes_total",
			Help: "Total number of training episodes",
		}),
		EpisodeReward: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wastepolicy_rl_episode_reward",
			Help:    "Undiscounted return of training episodes",
			Buckets: prometheus.LinearBuckets(-60, 20, 10),
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wastepolicy_runs_total",
			Help: "Total number of executed runs",
		}, []string{"kind", "status"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wastepolicy_run_duration_seconds",
			Help:    "Duration of run execution in seconds",
			Buckets: RunBuckets,
		}, []string{"kind"}),
		RunsInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wastepolicy_runs_in_flight",
			Help: "Number of runs currently executing",
		}, []string{"kind"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wastepolicy_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "code"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wastepolicy_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: DefaultBuckets,
		}, []string{"method"}),
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(kind, status string, seconds float64) {
	m.RunsTotal.WithLabelValues(kind, status).Inc()
	m.RunDuration.WithLabelValues(kind).Observe(seconds)
}

// ObserveEpisode records a finished training episode.
func (m *Metrics) ObserveEpisode(reward float64) {
	m.EpisodesTotal.Inc()
	m.EpisodeReward.Observe(reward)
}

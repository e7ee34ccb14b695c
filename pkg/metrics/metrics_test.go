package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	require.NoError(t, c.Write(&m))

	return m.GetCounter().GetValue()
}

func TestDefaultIsSingleton(t *testing.T) {
	require.Same(t, metrics.Default(), metrics.Default())
}

func TestObserveRun(t *testing.T) {
	m := metrics.Default()

	before := counterValue(t, m.RunsTotal.WithLabelValues("SIMULATION", "COMPLETED"))
	m.ObserveRun("SIMULATION", "COMPLETED", 1.5)
	require.InDelta(t, before+1, counterValue(t, m.RunsTotal.WithLabelValues("SIMULATION", "COMPLETED")), 1e-9)
}

func TestObserveEpisode(t *testing.T) {
	m := metrics.Default()

	before := counterValue(t, m.EpisodesTotal)
	m.ObserveEpisode(12.5)
	require.InDelta(t, before+1, counterValue(t, m.EpisodesTotal), 1e-9)
}

func TestNewRegistersOnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveRun("TRAINING", "FAILED", 3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(t, names, "wastepolicy_runs_total")
	require.Contains(t, names, "wastepolicy_run_duration_seconds")

	require.Panics(t, func() { metrics.New(reg) }, "collectors must not register twice")
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wastepolicy/internal/config"
	"wastepolicy/pkg/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yml", `
environment: production
http:
  addr: ":9090"
worker:
  maxAttempts: 5
training:
  episodes: 50
  alpha: 0.2
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, time.Minute, cfg.HTTP.ReadTimeout)
	require.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, "wastepolicy", cfg.JWT.Issuer)
	require.Equal(t, 5, cfg.Worker.MaxAttempts)
	require.Equal(t, time.Hour, cfg.Worker.JobTimeout)
	require.Equal(t, 50, cfg.Training.Episodes)
	require.Equal(t, 0.2, cfg.Training.Alpha)
	require.Equal(t, 0.95, cfg.Training.Gamma)
	require.Equal(t, 90, cfg.Simulation.TicksPerQuarter)
	require.Equal(t, 64, cfg.Sensitivity.Samples)
	require.Equal(t, "wastepolicy", cfg.Database.DatabaseName)

	profiles, err := cfg.Profiles()
	require.NoError(t, err)
	require.Equal(t, domain.DefaultProfiles(), profiles)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WORKER_MAX_WORKERS", "3")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	path := writeFile(t, "config.yml", "environment: development\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Worker.MaxWorkers)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_Missing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestParseProfiles(t *testing.T) {
	profiles, err := config.ParseProfiles([]byte(`
barangays:
  - id: 1
    name: Centro
    urban: true
    households: 40
    officials: 1
    vehicles: 1
    initialCompliance: 0.2
    width: 10
    height: 10
    behavior:
      effortCost: 0.45
  - id: 2
    name: Upland
    households: 20
    officials: 0
    vehicles: 1
    initialCompliance: 0.6
    width: 8
    height: 8
    incomeMix: [0.7, 0.2, 0.1]
`))
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	require.True(t, profiles[0].Urban)
	require.Equal(t, 0.45, profiles[0].Behavior.EffortCost)
	require.Equal(t, domain.DefaultBehavior().AttitudeWeight, profiles[0].Behavior.AttitudeWeight)
	require.Equal(t, domain.DefaultIncomeMix, profiles[0].IncomeMix)
	require.Equal(t, [3]float64{0.7, 0.2, 0.1}, profiles[1].IncomeMix)
	require.Equal(t, domain.DefaultBehavior(), profiles[1].Behavior)
}

func TestParseProfiles_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":     "barangays: []\n",
		"malformed": "barangays: [",
		"invalid":   "barangays:\n  - id: 1\n    name: X\n    households: 0\n    width: 1\n    height: 1\n",
		"duplicate": `
barangays:
  - {id: 1, name: A, households: 1, width: 1, height: 1}
  - {id: 1, name: B, households: 1, width: 1, height: 1}
`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.ParseProfiles([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestConfig_ProfilesFromFile(t *testing.T) {
	path := writeFile(t, "profiles.yml", "barangays:\n  - {id: 3, name: C, households: 5, width: 3, height: 3}\n")

	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Simulation.ProfilesPath = path

	profiles, err := cfg.Profiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.Equal(t, "C", profiles[0].Name)
}

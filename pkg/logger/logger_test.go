package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"wastepolicy/pkg/logger"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
		wantDebug   bool
		wantErr     bool
	}{
		{name: "development defaults to debug", environment: logger.DevelopmentEnvironment, wantDebug: true},
		{name: "production defaults to info", environment: logger.ProductionEnvironment},
		{name: "level override", environment: logger.DevelopmentEnvironment, level: "warn"},
		{name: "production debug override", environment: logger.ProductionEnvironment, level: "debug", wantDebug: true},
		{name: "invalid level", environment: logger.ProductionEnvironment, level: "loud", wantErr: true},
		{name: "empty environment is development", wantDebug: true},
		{name: "unknown environment", environment: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logger.Setup(tt.environment, tt.level)
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantDebug, logger.IsDebug(context.Background()))
		})
	}
}

func TestGetPrefersContextLogger(t *testing.T) {
	require.NoError(t, logger.Setup(logger.DevelopmentEnvironment, ""))

	ctx := context.Background()
	require.NotNil(t, logger.Get(ctx))

	custom := zap.NewNop()
	require.Same(t, custom, logger.Get(logger.WithLogger(ctx, custom)))
}

func TestWithFieldsAttachesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))
	ctx = logger.WithFields(ctx, zap.String("run", "r-1"), zap.Int("quarter", 3))

	logger.Info(ctx, "quarter simulated")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "quarter simulated", entries[0].Message)
	require.Equal(t, "r-1", entries[0].ContextMap()["run"])
	require.EqualValues(t, 3, entries[0].ContextMap()["quarter"])
}

func TestLevelHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	logger.Debug(ctx, "hidden")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	require.Equal(t, 3, logs.Len())
	require.False(t, logger.IsDebug(ctx))
}

func TestNamedAndSlog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.Named(logger.WithLogger(context.Background(), zap.New(core)), "river")

	logger.Slog(ctx).Info("job completed", "kind", "run")
	logger.Slog(ctx).Debug("hidden")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "river", entries[0].LoggerName)
	require.Equal(t, "job completed", entries[0].Message)
	require.Equal(t, "run", entries[0].ContextMap()["kind"])
}

package v1handler

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
)

func TestEncodeRun_UnencodableResult(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	run := &domain.Run{
		Kind:   domain.RunKindSimulate,
		Status: domain.RunStatusCompleted,
		Params: domain.RunParams{Seed: 7},
		Result: domain.RunResult{Simulation: &domain.SimulationSummary{FinalCompliance: math.NaN()}},
	}

	var e jx.Encoder
	encodeRun(ctx, &e, run)

	var out map[string]any
	require.NoError(t, json.Unmarshal(e.Bytes(), &out))
	require.Contains(t, out, "result")
	require.Nil(t, out["result"])
	require.NotNil(t, out["params"])

	entries := logs.FilterMessage("could not encode field").All()
	require.Len(t, entries, 1)
	require.Equal(t, "result", entries[0].ContextMap()["field"])
}

func TestEncodeRun_Completed(t *testing.T) {
	run := &domain.Run{
		Kind:   domain.RunKindSimulate,
		Status: domain.RunStatusCompleted,
		Result: domain.RunResult{Simulation: &domain.SimulationSummary{Ticks: 90, FinalCompliance: 0.6}},
	}

	var e jx.Encoder
	encodeRun(context.Background(), &e, run)

	var out struct {
		Result struct {
			Simulation struct {
				Ticks           int     `json:"ticks"`
				FinalCompliance float64 `json:"finalCompliance"`
			} `json:"simulation"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(e.Bytes(), &out))
	require.Equal(t, 90, out.Result.Simulation.Ticks)
	require.InDelta(t, 0.6, out.Result.Simulation.FinalCompliance, 1e-9)
}

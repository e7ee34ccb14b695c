package runner_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wastepolicy/internal/runner"
	"wastepolicy/pkg/domain"
)

func TestNormalizeParams(t *testing.T) {
	policyID := domain.PolicyID(uuid.New())
	levers := &domain.Levers{Fine: 0.2, IEC: 0.4}

	cases := []struct {
		name string
		kind domain.RunKind
		in   domain.RunParams
		out  domain.RunParams
		ok   bool
	}{
		{
			name: "simulation defaults",
			kind: domain.RunKindSimulate,
			in:   domain.RunParams{Levers: levers, Episodes: 9},
			out:  domain.RunParams{Seed: 42, Ticks: 365, Levers: levers},
			ok:   true,
		},
		{
			name: "training keeps episodes and drops policy",
			kind: domain.RunKindTrain,
			in:   domain.RunParams{Seed: 7, Episodes: 50, PolicyID: &policyID, Barangays: []int{3, 1}},
			out:  domain.RunParams{Seed: 7, Episodes: 50, Quarters: 12, TicksPerQuarter: 90, Barangays: []int{3, 1}},
			ok:   true,
		},
		{
			name: "evaluation defaults to one episode",
			kind: domain.RunKindEvaluate,
			in:   domain.RunParams{PolicyID: &policyID, Quarters: 4},
			out:  domain.RunParams{Seed: 42, Episodes: 1, Quarters: 4, TicksPerQuarter: 90, PolicyID: &policyID},
			ok:   true,
		},
		{
			name: "calibration keeps status-quo ticks",
			kind: domain.RunKindCalibrate,
			in:   domain.RunParams{Generations: 3},
			out:  domain.RunParams{Seed: 42, Generations: 3, Population: 15},
			ok:   true,
		},
		{
			name: "sensitivity defaults",
			kind: domain.RunKindSensitivity,
			in:   domain.RunParams{},
			out:  domain.RunParams{Seed: 42, Ticks: 365, Samples: 64},
			ok:   true,
		},
		{name: "unknown kind", kind: "NOPE"},
		{name: "negative ticks", kind: domain.RunKindSimulate, in: domain.RunParams{Ticks: -1}},
		{name: "too many ticks", kind: domain.RunKindSimulate, in: domain.RunParams{Ticks: 3651}},
		{name: "too many quarters", kind: domain.RunKindScenarios, in: domain.RunParams{Quarters: 41}},
		{name: "too many episodes", kind: domain.RunKindTrain, in: domain.RunParams{Episodes: 5001}},
		{name: "unknown barangay", kind: domain.RunKindSimulate, in: domain.RunParams{Barangays: []int{1, 99}}},
		{name: "repeated barangay", kind: domain.RunKindSimulate, in: domain.RunParams{Barangays: []int{2, 2}}},
		{name: "lever out of range", kind: domain.RunKindSimulate, in: domain.RunParams{Levers: &domain.Levers{Fine: 1.5}}},
		{
			name: "policy and levers together",
			kind: domain.RunKindEvaluate,
			in:   domain.RunParams{PolicyID: &policyID, Levers: levers},
		},
		{name: "population of one", kind: domain.RunKindCalibrate, in: domain.RunParams{Population: 1}},
		{name: "single sample", kind: domain.RunKindSensitivity, in: domain.RunParams{Samples: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := runner.NormalizeParams(tc.kind, tc.in, testLimits(), domain.DefaultProfiles())
			if !tc.ok {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.out, got)
		})
	}
}

func TestJobArgs(t *testing.T) {
	args := runner.JobArgs{RunID: domain.RunID(uuid.New()), RunKind: domain.RunKindTrain}

	require.Equal(t, "ExecuteRunJob", args.Kind())

	// the run kind travels in the job payload for the worker's budget
	b, err := json.Marshal(args)
	require.NoError(t, err)
	var decoded runner.JobArgs
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, domain.RunKindTrain, decoded.RunKind)
	require.Contains(t, string(b), `"kind":"TRAINING"`)
	opts := args.InsertOpts()
	require.True(t, opts.UniqueOpts.ByArgs)
	require.NotEmpty(t, opts.UniqueOpts.ByState)
}

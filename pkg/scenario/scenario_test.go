package scenario_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/policyenv"
	"wastepolicy/pkg/rl"
	"wastepolicy/pkg/scenario"
)

func smallOptions(t *testing.T) policyenv.Options {
	t.Helper()

	profiles, _, ok := domain.SelectProfiles(domain.DefaultProfiles(), []int{2, 4})
	require.True(t, ok)

	opts := policyenv.DefaultOptions()
	opts.Profiles = profiles
	opts.TicksPerQuarter = 10
	opts.MaxQuarters = 4

	return opts
}

func TestPolicies(t *testing.T) {
	ps := scenario.Policies(nil)
	require.Len(t, ps, 2)
	require.Equal(t, scenario.Baseline, ps[0].Name())
	require.Equal(t, scenario.UniformStatic, ps[1].Name())

	learner := rl.NewQLearner(rl.DefaultConfig(), rl.NewDiscretizer(4), rl.DefaultCatalogue(), 1)
	ps = scenario.Policies(learner)
	require.Len(t, ps, 3)
	require.Equal(t, scenario.Learned, ps[2].Name())
}

func TestRun(t *testing.T) {
	opts := smallOptions(t)
	learner := rl.NewQLearner(rl.DefaultConfig(), rl.NewDiscretizer(opts.MaxQuarters), rl.DefaultCatalogue(), 1)

	outcomes, err := scenario.Run(context.Background(), opts, scenario.Policies(learner), 11)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for _, o := range outcomes {
		require.Len(t, o.Records, opts.MaxQuarters)
		require.GreaterOrEqual(t, o.FinalCompliance, 0.0)
		require.LessOrEqual(t, o.FinalCompliance, 1.0)
		require.Equal(t, o.Records[len(o.Records)-1].Observation.MeanCompliance, o.FinalCompliance)

		var total float64
		for _, r := range o.Records {
			total += r.Reward
			require.Len(t, r.Observation.Barangays, 2)
		}
		require.InDelta(t, total, o.TotalReward, 1e-9)
	}

	for _, r := range outcomes[0].Records {
		require.Equal(t, domain.Levers{}, r.Action.For(0))
	}
	for _, r := range outcomes[1].Records {
		require.Equal(t, scenario.UniformLevers, r.Action.For(1))
	}

	again, err := scenario.Run(context.Background(), opts, scenario.Policies(nil), 11)
	require.NoError(t, err)
	require.Equal(t, outcomes[0].Summary(), again[0].Summary())
	require.Equal(t, outcomes[1].Summary(), again[1].Summary())

	sums := scenario.Summaries(outcomes)
	require.Len(t, sums, 3)
	require.Equal(t, scenario.Learned, sums[2].Name)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scenario.Run(ctx, smallOptions(t), scenario.Policies(nil), 1)
	require.Error(t, err)
}

package rl_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/policyenv"
	"wastepolicy/pkg/rl"
)

func smallEnv(t *testing.T) *policyenv.Env {
	t.Helper()

	profiles, _, ok := domain.SelectProfiles(domain.DefaultProfiles(), []int{2, 5})
	require.True(t, ok)

	opts := policyenv.DefaultOptions()
	opts.Profiles = profiles
	opts.TicksPerQuarter = 10
	opts.MaxQuarters = 3

	env, err := policyenv.New(opts)
	require.NoError(t, err)

	return env
}

func TestDiscretizer(t *testing.T) {
	t.Parallel()

	d := rl.NewDiscretizer(12)
	require.Equal(t, 10*5*13, d.NumStates())

	require.Equal(t, rl.State(0), d.State(policyenv.Observation{}))
	require.Equal(t, rl.State(9), d.State(policyenv.Observation{MeanCompliance: 1}))
	require.Equal(t, rl.State(5), d.State(policyenv.Observation{MeanCompliance: 0.55}))
	require.Equal(t, rl.State(4*10), d.State(policyenv.Observation{ImproperRate: 0.9}))
	require.Equal(t, rl.State(2*10), d.State(policyenv.Observation{ImproperRate: 0.2}))
	require.Equal(t, rl.State(12*50), d.State(policyenv.Observation{Quarter: 40}))
	require.Equal(t, rl.State(3*50+10+7), d.State(policyenv.Observation{Quarter: 3, MeanCompliance: 0.71, ImproperRate: 0.15}))
}

func TestCatalogue(t *testing.T) {
	t.Parallel()

	c := rl.DefaultCatalogue()
	require.Len(t, c, 125)
	require.Equal(t, domain.Levers{}, c[0])
	require.Equal(t, domain.Levers{Fine: 1, Incentive: 1, IEC: 1}, c[124])
	require.Equal(t, domain.Levers{Fine: 0.5, Incentive: 0.25, IEC: 1}, c[c.Nearest(domain.Levers{Fine: 0.45, Incentive: 0.3, IEC: 0.95})])
}

func TestQLearnerUpdate(t *testing.T) {
	t.Parallel()

	cfg := rl.Config{Alpha: 0.5, Gamma: 0.9, Epsilon: 0, EpsilonDecay: 1, MinEpsilon: 0}
	l := rl.NewQLearner(cfg, rl.NewDiscretizer(3), rl.DefaultCatalogue(), 1)

	l.Update(1, 2, 10, 0, true)
	require.InDelta(t, 5.0, l.Value(1, 2), 1e-12)

	// bootstraps from the greedy value of state 1 (5.0)
	l.Update(0, 7, 1, 1, false)
	require.InDelta(t, 0.5*(1+0.9*5), l.Value(0, 7), 1e-12)

	require.Equal(t, 2, l.Greedy(1))
	require.Equal(t, 2, l.Act(1))
	require.Equal(t, 0, l.Greedy(5))
	require.Equal(t, 2, l.StatesVisited())
}

func TestEpsilonDecayHasFloor(t *testing.T) {
	t.Parallel()

	cfg := rl.Config{Alpha: 0.1, Gamma: 0.9, Epsilon: 1, EpsilonDecay: 0.5, MinEpsilon: 0.2}
	l := rl.NewQLearner(cfg, rl.NewDiscretizer(3), rl.DefaultCatalogue(), 1)

	l.DecayEpsilon()
	require.InDelta(t, 0.5, l.Epsilon(), 1e-12)
	l.DecayEpsilon()
	l.DecayEpsilon()
	require.InDelta(t, 0.2, l.Epsilon(), 1e-12)
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()

	l := rl.NewQLearner(rl.DefaultConfig(), rl.NewDiscretizer(3), rl.DefaultCatalogue(), 1)
	l.Update(4, 60, 3, 0, true)
	l.DecayEpsilon()

	data, err := json.Marshal(l)
	require.NoError(t, err)

	restored, err := rl.Unmarshal(data)
	require.NoError(t, err)
	require.InDelta(t, l.Value(4, 60), restored.Value(4, 60), 1e-12)
	require.InDelta(t, l.Epsilon(), restored.Epsilon(), 1e-12)
	require.Equal(t, 60, restored.Greedy(4))
	require.Equal(t, 1, restored.StatesVisited())

	snap := l.Snapshot()
	snap.Q = snap.Q[:3]
	_, err = rl.Restore(snap, 0)
	require.Error(t, err)

	snap = l.Snapshot()
	snap.Algorithm = "ppo"
	_, err = rl.Restore(snap, 0)
	require.Error(t, err)

	_, err = rl.Unmarshal([]byte("{"))
	require.Error(t, err)
}

func TestGreedyPolicyFollowsTable(t *testing.T) {
	t.Parallel()

	l := rl.NewQLearner(rl.DefaultConfig(), rl.NewDiscretizer(3), rl.DefaultCatalogue(), 1)
	obs := policyenv.Observation{Quarter: 1, MeanCompliance: 0.3}
	l.Update(l.State(obs), 124, 1, 0, true)

	action := rl.Greedy{Learner: l}.Act(obs)
	require.Equal(t, domain.Uniform(domain.Levers{Fine: 1, Incentive: 1, IEC: 1}), action)
	require.Equal(t, "learned", rl.Greedy{Learner: l}.Name())
}

func TestEvaluateStatic(t *testing.T) {
	t.Parallel()

	env := smallEnv(t)
	p := rl.Static{Label: "uniform_static", Levers: domain.Levers{Fine: 0.1, IEC: 0.3}}

	ev, err := rl.Evaluate(t.Context(), env, p, 2, 10)
	require.NoError(t, err)
	require.Equal(t, "uniform_static", ev.Policy)
	require.Len(t, ev.EpisodeRewards, 2)
	require.Len(t, ev.Records, 6)
	require.Equal(t, 1, ev.Records[3].Episode)
	require.GreaterOrEqual(t, ev.StdReward, 0.0)

	again, err := rl.Evaluate(t.Context(), env, p, 2, 10)
	require.NoError(t, err)
	require.Equal(t, ev.EpisodeRewards, again.EpisodeRewards)

	summary := ev.Summary()
	require.Len(t, summary.Quarters, 3)
	require.Equal(t, 3, summary.Quarters[2].Quarter)
	require.InDelta(t, ev.MeanReward, summary.TotalReward, 1e-12)
}

func TestTrain(t *testing.T) {
	t.Parallel()

	env := smallEnv(t)
	l := rl.NewQLearner(rl.DefaultConfig(), rl.NewDiscretizer(env.MaxQuarters()), rl.DefaultCatalogue(), 3)

	var episodes, checkpoints int
	res, err := rl.Train(t.Context(), env, l, rl.TrainOptions{Episodes: 4, Seed: 1, EvalEvery: 2}, rl.Callbacks{
		OnEpisode: func(context.Context, rl.EpisodeStats) { episodes++ },
		OnCheckpoint: func(_ context.Context, episode int, best *rl.QLearner, _ float64) error {
			require.NotNil(t, best)
			require.Contains(t, []int{1, 3}, episode)
			checkpoints++

			return nil
		},
	})
	require.NoError(t, err)
	require.Equal(t, 4, episodes)
	require.GreaterOrEqual(t, checkpoints, 1)
	require.Len(t, res.Episodes, 4)
	require.NotNil(t, res.Best)
	require.Same(t, l, res.Final)
	require.Less(t, res.Final.Epsilon(), 1.0)
	require.Positive(t, res.Final.StatesVisited())

	summary := res.Summary()
	require.Equal(t, 4, summary.Episodes)
	require.Len(t, summary.Rewards, 4)
	require.InDelta(t, res.BestReward, summary.BestReward, 1e-12)

	_, err = rl.Train(t.Context(), env, l, rl.TrainOptions{}, rl.Callbacks{})
	require.Error(t, err)
}

func TestInterrogate(t *testing.T) {
	t.Parallel()

	probes := rl.DefaultProbes(7, 0)
	require.Len(t, probes, 6)
	require.InDelta(t, (0.1+6*0.7)/7, probes[4].Observation.MeanCompliance, 1e-12)

	answers := rl.Interrogate(rl.Static{Label: "fixed", Levers: domain.Levers{IEC: 0.3}}, probes)
	require.Len(t, answers, 6)
	for _, a := range answers {
		require.Equal(t, domain.Uniform(domain.Levers{IEC: 0.3}), a.Action)
		require.Len(t, a.Compliance, 7)
	}
	require.Equal(t, "differentiated_one_high", answers[5].Probe)
	require.InDelta(t, 0.9, answers[5].Compliance[0], 1e-12)
}

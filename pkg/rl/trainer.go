package rl

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/metrics"
	"wastepolicy/pkg/policyenv"
)

// evalSeedOffset keeps greedy evaluation episodes apart from training episodes.
const evalSeedOffset = 1 << 32

// TrainOptions configures Train.
type TrainOptions struct {
	Episodes int
	Seed     uint64
	// EvalEvery runs a greedy evaluation every that many episodes. The final
	// episode is always evaluated.
	EvalEvery    int
	EvalEpisodes int

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// EpisodeStats describes one training episode.
type EpisodeStats struct {
	Episode         int     `json:"episode"`
	Reward          float64 `json:"reward"`
	Epsilon         float64 `json:"epsilon"`
	FinalCompliance float64 `json:"finalCompliance"`
	StatesVisited   int     `json:"statesVisited"`
}

// Callbacks observe training progress. Every field is optional.
type Callbacks struct {
	OnEpisode func(ctx context.Context, stats EpisodeStats)
	// OnCheckpoint is called whenever a greedy evaluation beats the best one so far.
	OnCheckpoint func(ctx context.Context, episode int, best *QLearner, reward float64) error
}

// TrainResult holds the trained learners.
type TrainResult struct {
	// Best is a copy of the learner at its best greedy evaluation.
	Best        *QLearner
	BestReward  float64
	BestEpisode int
	// Final is the learner after the last episode.
	Final    *QLearner
	Episodes []EpisodeStats
}

// Summary converts the result into its persisted form.
func (r TrainResult) Summary() domain.TrainingSummary {
	out := domain.TrainingSummary{
		Episodes:     len(r.Episodes),
		BestReward:   r.BestReward,
		Rewards:      make([]float64, len(r.Episodes)),
		FinalEpsilon: r.Final.Epsilon(),
	}
	for i, e := range r.Episodes {
		out.Rewards[i] = e.Reward
	}
	if r.Best != nil {
		out.StatesVisited = r.Best.StatesVisited()
	}

	return out
}

// Train runs episodic Q-learning of learner on env.
func Train(ctx context.Context, env *policyenv.Env, learner *QLearner, opts TrainOptions, cb Callbacks) (TrainResult, error) {
	if opts.Episodes <= 0 {
		return TrainResult{}, fmt.Errorf("episodes must be positive, got %d", opts.Episodes)
	}
	evalEpisodes := max(opts.EvalEpisodes, 1)

	res := TrainResult{Final: learner, BestEpisode: -1}
	for ep := range opts.Episodes {
		stats, err := trainEpisode(ctx, env, learner, EpisodeSeed(opts.Seed, ep))
		if err != nil {
			return TrainResult{}, fmt.Errorf("episode %d: %w", ep, err)
		}
		stats.Episode = ep
		res.Episodes = append(res.Episodes, stats)

		if opts.Metrics != nil {
			opts.Metrics.ObserveEpisode(stats.Reward)
		}
		if cb.OnEpisode != nil {
			cb.OnEpisode(ctx, stats)
		}

		last := ep == opts.Episodes-1
		if !last && (opts.EvalEvery <= 0 || (ep+1)%opts.EvalEvery != 0) {
			continue
		}

		ev, err := Evaluate(ctx, env, Greedy{Learner: learner}, evalEpisodes, opts.Seed+evalSeedOffset)
		if err != nil {
			return TrainResult{}, fmt.Errorf("could not evaluate episode %d: %w", ep, err)
		}
		logger.Debug(ctx, "greedy evaluation",
			zap.Int("episode", ep),
			zap.Float64("reward", ev.MeanReward),
			zap.Float64("epsilon", learner.Epsilon()))

		if res.Best != nil && ev.MeanReward <= res.BestReward {
			continue
		}
		res.Best, res.BestReward, res.BestEpisode = learner.Clone(), ev.MeanReward, ep
		if cb.OnCheckpoint != nil {
			if err := cb.OnCheckpoint(ctx, ep, res.Best, ev.MeanReward); err != nil {
				return TrainResult{}, fmt.Errorf("checkpoint at episode %d: %w", ep, err)
			}
		}
	}

	return res, nil
}

func trainEpisode(ctx context.Context, env *policyenv.Env, learner *QLearner, seed uint64) (EpisodeStats, error) {
	obs := env.Reset(seed)
	s := learner.State(obs)

	var stats EpisodeStats
	for !env.Done() {
		a := learner.Act(s)
		step, err := env.Step(ctx, domain.Uniform(learner.Actions()[a]))
		if err != nil {
			return EpisodeStats{}, err
		}

		next := learner.State(step.Observation)
		learner.Update(s, a, step.Reward, next, step.Terminated)
		stats.Reward += step.Reward
		stats.FinalCompliance = step.Observation.MeanCompliance
		s = next
	}
	learner.DecayEpsilon()

	stats.Epsilon = learner.Epsilon()
	stats.StatesVisited = learner.StatesVisited()

	return stats, nil
}

package rl

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/policyenv"
)

// QuarterRecord is one decision step of an evaluated episode.
type QuarterRecord struct {
	Episode     int                   `json:"episode"`
	Action      domain.Action         `json:"action"`
	Reward      float64               `json:"reward"`
	PolicyCost  float64               `json:"policyCost"`
	Observation policyenv.Observation `json:"observation"`
}

// Evaluation summarises the rollouts of a policy.
type Evaluation struct {
	Policy              string          `json:"policy"`
	Episodes            int             `json:"episodes"`
	MeanReward          float64         `json:"meanReward"`
	StdReward           float64         `json:"stdReward"`
	MeanFinalCompliance float64         `json:"meanFinalCompliance"`
	EpisodeRewards      []float64       `json:"episodeRewards"`
	Records             []QuarterRecord `json:"records"`
}

// EpisodeSeed derives the environment seed of episode ep. Episodes are spaced
// so that the per-barangay seeds of two episodes never collide.
func EpisodeSeed(base uint64, ep int) uint64 {
	return base + uint64(ep)*1000 //nolint: gosec
}

// Rollout plays one full episode of p from the given seed.
func Rollout(ctx context.Context, env *policyenv.Env, p Policy, seed uint64) ([]QuarterRecord, float64, error) {
	obs := env.Reset(seed)

	var (
		records []QuarterRecord
		total   float64
	)
	for !env.Done() {
		action := p.Act(obs)
		res, err := env.Step(ctx, action)
		if err != nil {
			return nil, 0, fmt.Errorf("could not step %s policy: %w", p.Name(), err)
		}

		records = append(records, QuarterRecord{
			Action:      action,
			Reward:      res.Reward,
			PolicyCost:  res.PolicyCost,
			Observation: res.Observation,
		})
		total += res.Reward
		obs = res.Observation
	}

	return records, total, nil
}

// Evaluate rolls p out for the given number of episodes.
func Evaluate(ctx context.Context, env *policyenv.Env, p Policy, episodes int, seed uint64) (Evaluation, error) {
	episodes = max(episodes, 1)
	ev := Evaluation{Policy: p.Name(), Episodes: episodes}

	finals := make([]float64, 0, episodes)
	for ep := range episodes {
		records, total, err := Rollout(ctx, env, p, EpisodeSeed(seed, ep))
		if err != nil {
			return Evaluation{}, err
		}
		for i := range records {
			records[i].Episode = ep
		}

		ev.Records = append(ev.Records, records...)
		ev.EpisodeRewards = append(ev.EpisodeRewards, total)
		if len(records) > 0 {
			finals = append(finals, records[len(records)-1].Observation.MeanCompliance)
		}
	}

	ev.MeanReward, ev.StdReward = stat.PopMeanStdDev(ev.EpisodeRewards, nil)
	if len(finals) > 0 {
		ev.MeanFinalCompliance = stat.Mean(finals, nil)
	}

	return ev, nil
}

// Summary condenses the first episode of the evaluation.
func (e Evaluation) Summary() domain.EvaluationSummary {
	out := domain.EvaluationSummary{
		Policy:          e.Policy,
		TotalReward:     e.MeanReward,
		FinalCompliance: e.MeanFinalCompliance,
	}
	for _, r := range e.Records {
		if r.Episode != 0 {
			break
		}
		out.Quarters = append(out.Quarters, domain.QuarterSummary{
			Quarter:        r.Observation.Quarter,
			Action:         r.Action,
			MeanCompliance: r.Observation.MeanCompliance,
			ImproperRate:   r.Observation.ImproperRate,
			Reward:         r.Reward,
		})
	}

	return out
}

// Package scenario compares policies on identical barangay histories.
package scenario

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/policyenv"
	"wastepolicy/pkg/rl"
)

const (
	Baseline      = "baseline"
	UniformStatic = "uniform_static"
	Learned       = "learned"
)

// UniformLevers is the fixed policy of the uniform static scenario.
var UniformLevers = domain.Levers{IEC: 0.3, Fine: 0.1}

// Policies returns the standard scenarios. learned may be nil, in which case
// the learned scenario is skipped.
func Policies(learned *rl.QLearner) []rl.Policy {
	out := []rl.Policy{
		rl.None(),
		rl.Static{Label: UniformStatic, Levers: UniformLevers},
	}
	if learned != nil {
		out = append(out, rl.Greedy{Label: Learned, Learner: learned})
	}

	return out
}

// Outcome is one scenario's episode.
type Outcome struct {
	Name             string             `json:"name"`
	TotalReward      float64            `json:"totalReward"`
	FinalCompliance  float64            `json:"finalCompliance"`
	MeanImproperRate float64            `json:"meanImproperRate"`
	Records          []rl.QuarterRecord `json:"records"`
}

// Summary drops the per-quarter records.
func (o Outcome) Summary() domain.ScenarioSummary {
	return domain.ScenarioSummary{
		Name:             o.Name,
		TotalReward:      o.TotalReward,
		FinalCompliance:  o.FinalCompliance,
		MeanImproperRate: o.MeanImproperRate,
	}
}

// Summaries converts a batch of outcomes.
func Summaries(outcomes []Outcome) []domain.ScenarioSummary {
	out := make([]domain.ScenarioSummary, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Summary()
	}

	return out
}

// Run plays every policy for one episode from the same seed. Each scenario
// gets its own environment so they run concurrently.
func Run(ctx context.Context, opts policyenv.Options, policies []rl.Policy, seed uint64) ([]Outcome, error) {
	out := make([]Outcome, len(policies))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range policies {
		env, err := policyenv.New(opts)
		if err != nil {
			return nil, err
		}

		g.Go(func() error {
			records, total, err := rl.Rollout(gctx, env, p, seed)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", p.Name(), err)
			}
			out[i] = outcome(p.Name(), records, total)

			logger.Debug(ctx, "scenario finished",
				zap.String("scenario", p.Name()),
				zap.Float64("reward", total),
				zap.Float64("finalCompliance", out[i].FinalCompliance),
			)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func outcome(name string, records []rl.QuarterRecord, total float64) Outcome {
	o := Outcome{Name: name, TotalReward: total, Records: records}
	if len(records) == 0 {
		return o
	}

	o.FinalCompliance = records[len(records)-1].Observation.MeanCompliance
	rates := make([]float64, len(records))
	for i, r := range records {
		rates[i] = r.Observation.ImproperRate
	}
	o.MeanImproperRate = stat.Mean(rates, nil)

	return o
}

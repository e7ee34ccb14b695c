package lab

import (
	"cmp"
	"context"

	"golang.org/x/sync/errgroup"

	"wastepolicy/pkg/abm"
	"wastepolicy/pkg/calibration"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/policyenv"
	"wastepolicy/pkg/report"
	"wastepolicy/pkg/rl"
	"wastepolicy/pkg/scenario"
	"wastepolicy/pkg/sensitivity"
	"wastepolicy/pkg/serrors"
)

// Simulation is the output of a fixed-lever simulation.
type Simulation struct {
	Series  []report.Series
	Summary domain.SimulationSummary
}

// Simulate runs every selected barangay for the requested ticks under fixed
// levers. Barangays are simulated concurrently.
func (l *Lab) Simulate(ctx context.Context, p domain.RunParams) (Simulation, error) {
	profiles, err := l.profiles(p)
	if err != nil {
		return Simulation{}, err
	}
	ticks := cmp.Or(p.Ticks, l.opts.Ticks)
	base := l.model(p)

	models := make([]*abm.Model, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	for i, profile := range profiles {
		g.Go(func() error {
			opts := base
			opts.Seed = base.Seed + uint64(i) //nolint: gosec
			m := abm.NewModel(profile, opts)
			for range ticks {
				if err := gctx.Err(); err != nil {
					return err
				}
				m.Step()
			}
			models[i] = m

			if l.opts.Metrics != nil {
				l.opts.Metrics.TicksTotal.WithLabelValues(profile.Name).Add(float64(ticks))
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Simulation{}, err
	}

	return summarize(models, ticks), nil
}

func summarize(models []*abm.Model, ticks int) Simulation {
	out := Simulation{
		Series:  make([]report.Series, len(models)),
		Summary: domain.SimulationSummary{Ticks: ticks, Barangays: make([]domain.BarangaySummary, len(models))},
	}

	var households int
	var compliant, rates float64
	for i, m := range models {
		s := m.Snapshot()
		n := len(m.Households())
		out.Series[i] = report.Series{Profile: m.Profile(), Rows: m.Collector().Rows()}
		out.Summary.Barangays[i] = domain.BarangaySummary{
			ID:             m.Profile().ID,
			Name:           m.Profile().Name,
			Households:     n,
			ComplianceRate: s.ComplianceRate,
			Improper:       s.ImproperDisposal,
			ImproperRate:   s.ImproperRate,
			Collections:    s.Collections,
			Fines:          s.Fines,
			Incentives:     s.Incentives,
		}

		households += n
		compliant += s.ComplianceRate * float64(n)
		rates += s.ComplianceRate
		out.Summary.TotalImproper += s.ImproperDisposal
	}

	if households > 0 {
		out.Summary.FinalCompliance = compliant / float64(households)
		out.Summary.ImproperRate = float64(out.Summary.TotalImproper) / float64(households)
	}
	if len(models) > 0 {
		out.Summary.MeanCompliance = rates / float64(len(models))
	}

	return out
}

// Train learns a Q-learning policy over the selected barangays.
func (l *Lab) Train(ctx context.Context, p domain.RunParams, cb rl.Callbacks) (rl.TrainResult, error) {
	env, err := l.env(p)
	if err != nil {
		return rl.TrainResult{}, err
	}

	seed := uint64(p.Seed) //nolint: gosec
	learner := rl.NewQLearner(l.opts.Learning, rl.NewDiscretizer(env.MaxQuarters()), rl.DefaultCatalogue(), seed)

	return rl.Train(ctx, env, learner, rl.TrainOptions{
		Episodes:     cmp.Or(p.Episodes, l.opts.Episodes),
		Seed:         seed,
		EvalEvery:    l.opts.EvalEvery,
		EvalEpisodes: l.opts.EvalEpisodes,
		Metrics:      l.opts.Metrics,
	}, cb)
}

// Policy picks the policy an evaluation rolls out: the learner when given,
// the fixed levers when set, no intervention otherwise.
func Policy(p domain.RunParams, learner *rl.QLearner) rl.Policy {
	switch {
	case learner != nil:
		return rl.Greedy{Learner: learner}
	case p.Levers != nil:
		return rl.Static{Label: "static", Levers: p.Levers.Clamp()}
	default:
		return rl.None()
	}
}

// Evaluate rolls the selected policy out over the requested episodes.
func (l *Lab) Evaluate(ctx context.Context, p domain.RunParams, learner *rl.QLearner) (rl.Evaluation, error) {
	env, err := l.env(p)
	if err != nil {
		return rl.Evaluation{}, err
	}

	return rl.Evaluate(ctx, env, Policy(p, learner), max(p.Episodes, 1), uint64(p.Seed)) //nolint: gosec
}

// Scenarios compares the baseline, the uniform static policy and, when given,
// the learned policy.
func (l *Lab) Scenarios(ctx context.Context, p domain.RunParams, learner *rl.QLearner) ([]scenario.Outcome, error) {
	opts, err := l.envOptions(p)
	if err != nil {
		return nil, err
	}
	if _, err := policyenv.New(opts); err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid environment")
	}

	return scenario.Run(ctx, opts, scenario.Policies(learner), uint64(p.Seed)) //nolint: gosec
}

func scenarioSummaries(outcomes []scenario.Outcome) []domain.ScenarioSummary {
	return scenario.Summaries(outcomes)
}

// Calibrate searches behavior parameters that reproduce the status-quo
// compliance band. onGeneration is optional.
func (l *Lab) Calibrate(ctx context.Context, p domain.RunParams, onGeneration func(calibration.Generation)) (calibration.Result, error) {
	profiles, err := l.profiles(p)
	if err != nil {
		return calibration.Result{}, err
	}

	opts := calibration.DefaultOptions()
	opts.Profiles = profiles
	opts.Model = l.opts.Model
	opts.Model.Seed = uint64(p.Seed) //nolint: gosec
	opts.Seed = uint64(p.Seed)       //nolint: gosec
	opts.Generations = cmp.Or(p.Generations, l.opts.Generations)
	opts.Population = cmp.Or(p.Population, l.opts.Population)
	opts.Ticks = cmp.Or(p.Ticks, opts.Ticks)
	opts.Parallelism = l.opts.Parallelism

	return calibration.Run(ctx, opts, onGeneration)
}

// Sensitivity runs a Sobol analysis of the behavioral parameters. progress
// is optional.
func (l *Lab) Sensitivity(ctx context.Context, p domain.RunParams, progress func(done, total int)) (sensitivity.Result, error) {
	profiles, err := l.profiles(p)
	if err != nil {
		return sensitivity.Result{}, err
	}

	opts := sensitivity.DefaultOptions()
	opts.Profiles = profiles
	opts.Model = l.model(p)
	opts.Seed = uint64(p.Seed) //nolint: gosec
	opts.Samples = cmp.Or(p.Samples, l.opts.Samples)
	opts.Ticks = cmp.Or(p.Ticks, opts.Ticks)
	opts.Parallelism = l.opts.Parallelism

	return sensitivity.Analyze(ctx, opts, progress)
}

// Analyze interrogates a learner with the standard probes at the given quarter.
func (l *Lab) Analyze(p domain.RunParams, learner *rl.QLearner, quarter int) ([]rl.Answer, error) {
	profiles, err := l.profiles(p)
	if err != nil {
		return nil, err
	}

	return rl.Interrogate(rl.Greedy{Learner: learner}, rl.DefaultProbes(len(profiles), quarter)), nil
}

// Package lab executes experiments of every run kind on top of the simulation,
// learning and analysis packages. It is shared by the background worker and
// the offline CLI commands.
package lab

import (
	"cmp"
	"context"
	"fmt"

	"wastepolicy/internal/config"
	"wastepolicy/pkg/abm"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/metrics"
	"wastepolicy/pkg/policyenv"
	"wastepolicy/pkg/rl"
	"wastepolicy/pkg/serrors"
)

// Options holds the defaults experiments fall back to when a parameter is
// left at its zero value.
type Options struct {
	Profiles []domain.BarangayProfile
	Model    abm.Options
	Env      policyenv.Options
	Learning rl.Config

	Ticks        int
	Episodes     int
	EvalEvery    int
	EvalEpisodes int

	Generations int
	Population  int
	Samples     int

	// Parallelism bounds the concurrent model evaluations of calibration and
	// sensitivity runs. Zero means GOMAXPROCS.
	Parallelism int
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Profiles:     domain.DefaultProfiles(),
		Model:        abm.DefaultOptions(),
		Env:          policyenv.DefaultOptions(),
		Learning:     rl.DefaultConfig(),
		Ticks:        365,
		Episodes:     200,
		EvalEvery:    10,
		EvalEpisodes: 1,
		Generations:  8,
		Population:   15,
		Samples:      64,
	}
}

// NewOptions constructs Options from the application config.
func NewOptions(cfg *config.Config) (Options, error) {
	profiles, err := cfg.Profiles()
	if err != nil {
		return Options{}, fmt.Errorf("could not load barangay profiles: %w", err)
	}

	opts := DefaultOptions()
	opts.Profiles = profiles
	opts.Env.Profiles = profiles
	opts.Env.TicksPerQuarter = cfg.Simulation.TicksPerQuarter
	opts.Env.MaxQuarters = cfg.Simulation.Quarters
	opts.Learning = rl.Config{
		Alpha:        cfg.Training.Alpha,
		Gamma:        cfg.Training.Gamma,
		Epsilon:      cfg.Training.Epsilon,
		EpsilonDecay: cfg.Training.EpsilonDecay,
		MinEpsilon:   cfg.Training.EpsilonMin,
	}
	opts.Ticks = cfg.Simulation.Ticks
	opts.Episodes = cfg.Training.Episodes
	opts.EvalEvery = cfg.Training.EvalEvery
	opts.EvalEpisodes = cfg.Training.EvalEpisodes
	opts.Generations = cfg.Calibration.Generations
	opts.Population = cfg.Calibration.Population
	opts.Samples = cfg.Sensitivity.Samples

	return opts, nil
}

// Lab runs experiments.
type Lab struct {
	opts Options
}

var _ Executor = (*Lab)(nil)

// New creates a Lab.
func New(opts Options) *Lab {
	return &Lab{opts: opts}
}

func (l *Lab) Options() Options { return l.opts }

// Execute dispatches run to the experiment of its kind.
func (l *Lab) Execute(ctx context.Context, run domain.Run, policy *domain.Policy) (Outcome, error) {
	p := run.Params

	var learner *rl.QLearner
	if p.PolicyID != nil {
		if policy == nil {
			return Outcome{}, serrors.With(serrors.ErrNotFound, "policy not found")
		}
		var err error
		if learner, err = l.Learner(policy); err != nil {
			return Outcome{}, err
		}
	}

	var out Outcome
	switch run.Kind {
	case domain.RunKindSimulate:
		sim, err := l.Simulate(ctx, p)
		if err != nil {
			return Outcome{}, err
		}
		out.Result.Simulation = &sim.Summary
	case domain.RunKindTrain:
		res, err := l.Train(ctx, p, rl.Callbacks{})
		if err != nil {
			return Outcome{}, err
		}
		sum := res.Summary()
		out.Result.Training = &sum
		out.Learner = res.Best
	case domain.RunKindEvaluate:
		ev, err := l.Evaluate(ctx, p, learner)
		if err != nil {
			return Outcome{}, err
		}
		sum := ev.Summary()
		out.Result.Evaluation = &sum
	case domain.RunKindScenarios:
		outcomes, err := l.Scenarios(ctx, p, learner)
		if err != nil {
			return Outcome{}, err
		}
		out.Result.Scenarios = scenarioSummaries(outcomes)
	case domain.RunKindCalibrate:
		res, err := l.Calibrate(ctx, p, nil)
		if err != nil {
			return Outcome{}, err
		}
		sum := res.Summary()
		out.Result.Calibration = &sum
	case domain.RunKindSensitivity:
		res, err := l.Sensitivity(ctx, p, nil)
		if err != nil {
			return Outcome{}, err
		}
		sum := res.Summary()
		out.Result.Sensitivity = &sum
	default:
		return Outcome{}, serrors.With(serrors.ErrBadRequest, "unknown run kind %q", run.Kind)
	}

	return out, nil
}

// Learner restores the learner stored in policy.
func (l *Lab) Learner(policy *domain.Policy) (*rl.QLearner, error) {
	learner, err := rl.Unmarshal(policy.Artifact)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConflict, err, "stored policy cannot be loaded")
	}

	return learner, nil
}

func (l *Lab) profiles(p domain.RunParams) ([]domain.BarangayProfile, error) {
	profiles, missing, ok := domain.SelectProfiles(l.opts.Profiles, p.Barangays)
	if !ok {
		return nil, serrors.With(serrors.ErrBadRequest, "unknown barangay %d", missing)
	}

	return profiles, nil
}

func (l *Lab) model(p domain.RunParams) abm.Options {
	m := l.opts.Model
	m.Seed = uint64(p.Seed) //nolint: gosec
	if p.Levers != nil {
		m.Levers = p.Levers.Clamp()
	}

	return m
}

func (l *Lab) envOptions(p domain.RunParams) (policyenv.Options, error) {
	profiles, err := l.profiles(p)
	if err != nil {
		return policyenv.Options{}, err
	}

	opts := l.opts.Env
	opts.Profiles = profiles
	opts.Model = l.opts.Model
	opts.TicksPerQuarter = cmp.Or(p.TicksPerQuarter, opts.TicksPerQuarter)
	opts.MaxQuarters = cmp.Or(p.Quarters, opts.MaxQuarters)
	opts.Metrics = l.opts.Metrics

	return opts, nil
}

func (l *Lab) env(p domain.RunParams) (*policyenv.Env, error) {
	opts, err := l.envOptions(p)
	if err != nil {
		return nil, err
	}

	env, err := policyenv.New(opts)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid environment")
	}

	return env, nil
}

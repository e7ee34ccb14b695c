package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"wastepolicy/internal/config"
	"wastepolicy/internal/lab"
	"wastepolicy/internal/runner"
	"wastepolicy/pkg/calibration"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/report"
	"wastepolicy/pkg/rl"
	"wastepolicy/pkg/scenario"
)

// experiment holds what every offline command shares: the lab, the flags
// selecting barangays and seed, and the output directory.
type experiment struct {
	cfg    *config.Config
	params domain.RunParams
	out    string
	policy string
	levers domain.Levers
}

func (x *experiment) flags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&x.params.Seed, "seed", x.cfg.Simulation.Seed, "Random seed")
	cmd.Flags().IntSliceVar(&x.params.Barangays, "barangays", nil, "Barangay IDs to simulate (default all)")
	cmd.Flags().StringVarP(&x.out, "out", "o", "out", "Directory the CSV and JSON outputs are written to")
}

func (x *experiment) leverFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&x.levers.Fine, "fine", 0, "Fine lever intensity in [0, 1]")
	cmd.Flags().Float64Var(&x.levers.Incentive, "incentive", 0, "Incentive lever intensity in [0, 1]")
	cmd.Flags().Float64Var(&x.levers.IEC, "iec", 0, "IEC campaign intensity in [0, 1]")
}

func (x *experiment) envFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&x.params.Quarters, "quarters", 0, "Quarters per episode (default from config)")
	cmd.Flags().IntVar(&x.params.TicksPerQuarter, "ticks-per-quarter", 0, "Days per quarter (default from config)")
}

func (x *experiment) policyFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVar(&x.policy, "policy", "", usage)
}

// lab normalizes the params for kind the way the API does and builds a lab.
func (x *experiment) lab(cmd *cobra.Command, kind domain.RunKind) (*lab.Lab, domain.RunParams, error) {
	opts, err := lab.NewOptions(x.cfg)
	if err != nil {
		return nil, domain.RunParams{}, err
	}

	p := x.params
	if leversSet(cmd) {
		levers := x.levers
		p.Levers = &levers
	}
	p, err = runner.NormalizeParams(kind, p, runner.NewLimits(x.cfg), opts.Profiles)
	if err != nil {
		return nil, domain.RunParams{}, fmt.Errorf("invalid parameters: %w", err)
	}

	return lab.New(opts), p, nil
}

func leversSet(cmd *cobra.Command) bool {
	for _, name := range []string{"fine", "incentive", "iec"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			return true
		}
	}

	return false
}

// learner loads the policy file given by --policy. An empty path returns nil.
func (x *experiment) learner() (*rl.QLearner, error) {
	if x.policy == "" {
		return nil, nil //nolint: nilnil
	}
	data, err := os.ReadFile(x.policy)
	if err != nil {
		return nil, fmt.Errorf("could not read policy: %w", err)
	}
	learner, err := rl.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("could not load policy %s: %w", x.policy, err)
	}

	return learner, nil
}

func (x *experiment) write(ctx context.Context, name string, fn func(w io.Writer) error) (err error) {
	if err := os.MkdirAll(x.out, 0o750); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}
	path := filepath.Join(x.out, name)
	f, err := os.Create(path) //nolint: gosec
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := fn(f); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	logger.Info(ctx, "wrote output", zap.String("path", path))

	return nil
}

func (x *experiment) writeJSON(ctx context.Context, name string, v any) error {
	return x.write(ctx, name, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	})
}

// offline wraps an experiment in a cancelable context and exits on failure.
func offline(fn func(ctx context.Context, cmd *cobra.Command) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ctx = logger.WithFields(ctx, zap.String("command", cmd.Name()))
		start := time.Now()
		if err := fn(ctx, cmd); err != nil {
			logger.Fatal(ctx, "experiment failed", zap.Error(err))
		}
		logger.Info(ctx, "experiment finished", zap.String("took", humanize.RelTime(start, time.Now(), "", "")))
	}
}

func simulateCommand(cfg *config.Config) *cobra.Command {
	x := &experiment{cfg: cfg}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Steps every selected barangay with fixed levers and writes the tick series",
	}
	cmd.Run = offline(func(ctx context.Context, cmd *cobra.Command) error {
		l, p, err := x.lab(cmd, domain.RunKindSimulate)
		if err != nil {
			return err
		}
		sim, err := l.Simulate(ctx, p)
		if err != nil {
			return err //nolint: wrapcheck
		}

		if err := x.write(ctx, "ticks.csv", func(w io.Writer) error { return report.WriteTicks(w, sim.Series) }); err != nil {
			return err
		}
		if err := x.writeJSON(ctx, "simulation.json", sim.Summary); err != nil {
			return err
		}

		return report.PrintSimulation(cmd.OutOrStdout(), sim.Summary) //nolint: wrapcheck
	})
	x.flags(cmd)
	x.leverFlags(cmd)
	cmd.Flags().IntVar(&x.params.Ticks, "ticks", 0, "Days to simulate (default from config)")

	return cmd
}

func trainCommand(cfg *config.Config) *cobra.Command {
	x := &experiment{cfg: cfg}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Trains a Q-learning policy and writes it with its episode statistics",
	}
	cmd.Run = offline(func(ctx context.Context, cmd *cobra.Command) error {
		l, p, err := x.lab(cmd, domain.RunKindTrain)
		if err != nil {
			return err
		}

		start := time.Now()
		res, err := l.Train(ctx, p, rl.Callbacks{
			OnEpisode: func(ctx context.Context, s rl.EpisodeStats) {
				if (s.Episode+1)%10 == 0 {
					logger.Info(ctx, "episode finished",
						zap.Int("episode", s.Episode+1),
						zap.Float64("reward", s.Reward),
						zap.Float64("epsilon", s.Epsilon))
				}
			},
			OnCheckpoint: func(ctx context.Context, episode int, _ *rl.QLearner, reward float64) error {
				logger.Info(ctx, "new best policy", zap.Int("episode", episode), zap.Float64("reward", reward))

				return nil
			},
		})
		if err != nil {
			return err //nolint: wrapcheck
		}

		best := res.Best
		if best == nil {
			best = res.Final
		}
		artifact, err := best.MarshalJSON()
		if err != nil {
			return fmt.Errorf("could not marshal policy: %w", err)
		}
		if err := x.write(ctx, "policy.json", func(w io.Writer) error {
			_, err := w.Write(artifact)

			return err //nolint: wrapcheck
		}); err != nil {
			return err
		}
		if err := x.write(ctx, "episodes.csv", func(w io.Writer) error { return report.WriteEpisodes(w, res.Episodes) }); err != nil {
			return err
		}

		return report.PrintTraining(cmd.OutOrStdout(), res.Summary(), time.Since(start)) //nolint: wrapcheck
	})
	x.flags(cmd)
	x.envFlags(cmd)
	cmd.Flags().IntVar(&x.params.Episodes, "episodes", 0, "Training episodes (default from config)")

	return cmd
}

func evaluateCommand(cfg *config.Config) *cobra.Command {
	x := &experiment{cfg: cfg}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Rolls out a trained policy, fixed levers or the no-lever baseline",
	}
	cmd.Run = offline(func(ctx context.Context, cmd *cobra.Command) error {
		learner, err := x.learner()
		if err != nil {
			return err
		}
		if learner != nil && leversSet(cmd) {
			return errors.New("--policy and lever flags are mutually exclusive")
		}
		l, p, err := x.lab(cmd, domain.RunKindEvaluate)
		if err != nil {
			return err
		}

		ev, err := l.Evaluate(ctx, p, learner)
		if err != nil {
			return err //nolint: wrapcheck
		}
		if err := x.write(ctx, "evaluation.csv", func(w io.Writer) error { return report.WriteEvaluation(w, ev) }); err != nil {
			return err
		}

		return report.PrintEvaluation(cmd.OutOrStdout(), ev.Summary()) //nolint: wrapcheck
	})
	x.flags(cmd)
	x.envFlags(cmd)
	x.leverFlags(cmd)
	x.policyFlag(cmd, "Policy file written by train")
	cmd.Flags().IntVar(&x.params.Episodes, "episodes", 0, "Evaluation episodes")

	return cmd
}

func analyzeCommand(cfg *config.Config) *cobra.Command {
	x := &experiment{cfg: cfg}
	var quarter int
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Asks a trained policy which levers it picks for typical situations",
	}
	cmd.Run = offline(func(ctx context.Context, cmd *cobra.Command) error {
		learner, err := x.learner()
		if err != nil {
			return err
		}
		l, p, err := x.lab(cmd, domain.RunKindEvaluate)
		if err != nil {
			return err
		}

		answers, err := l.Analyze(p, learner, quarter)
		if err != nil {
			return err //nolint: wrapcheck
		}
		if err := x.write(ctx, "analysis.csv", func(w io.Writer) error { return report.WriteAnswers(w, answers) }); err != nil {
			return err
		}

		return report.PrintAnswers(cmd.OutOrStdout(), answers) //nolint: wrapcheck
	})
	x.flags(cmd)
	x.policyFlag(cmd, "Policy file written by train")
	_ = cmd.MarkFlagRequired("policy")
	cmd.Flags().IntVar(&quarter, "quarter", 1, "Quarter the probe situations happen in")

	return cmd
}

func scenariosCommand(cfg *config.Config) *cobra.Command {
	x := &experiment{cfg: cfg}
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Compares the baseline, uniform static and learned policies on the same seed",
	}
	cmd.Run = offline(func(ctx context.Context, cmd *cobra.Command) error {
		learner, err := x.learner()
		if err != nil {
			return err
		}
		l, p, err := x.lab(cmd, domain.RunKindScenarios)
		if err != nil {
			return err
		}

		outcomes, err := l.Scenarios(ctx, p, learner)
		if err != nil {
			return err //nolint: wrapcheck
		}
		if err := x.write(ctx, "scenarios.csv", func(w io.Writer) error { return report.WriteScenarios(w, outcomes) }); err != nil {
			return err
		}
		summaries := scenario.Summaries(outcomes)
		if err := x.writeJSON(ctx, "scenarios.json", summaries); err != nil {
			return err
		}

		return report.PrintScenarios(cmd.OutOrStdout(), summaries) //nolint: wrapcheck
	})
	x.flags(cmd)
	x.envFlags(cmd)
	x.policyFlag(cmd, "Policy file written by train; the learned scenario is skipped without one")

	return cmd
}

func calibrateCommand(cfg *config.Config) *cobra.Command {
	x := &experiment{cfg: cfg}
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Searches behavior parameters reproducing the observed status quo",
	}
	cmd.Run = offline(func(ctx context.Context, cmd *cobra.Command) error {
		l, p, err := x.lab(cmd, domain.RunKindCalibrate)
		if err != nil {
			return err
		}

		res, err := l.Calibrate(ctx, p, func(g calibration.Generation) {
			logger.Info(ctx, "generation finished",
				zap.Int("generation", g.Index),
				zap.Float64("best", g.Best.Fitness),
				zap.Float64("mean", g.Mean))
		})
		if err != nil {
			return err //nolint: wrapcheck
		}

		sum := res.Summary()
		if err := x.write(ctx, "genes.csv", func(w io.Writer) error { return report.WriteGenes(w, sum.Genes) }); err != nil {
			return err
		}
		// usable as simulation.profilesPath
		if err := x.write(ctx, "profiles.yaml", func(w io.Writer) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(struct {
				Barangays []domain.BarangayProfile `yaml:"barangays"`
			}{res.Profiles}); err != nil {
				return err //nolint: wrapcheck
			}

			return enc.Close() //nolint: wrapcheck
		}); err != nil {
			return err
		}

		return report.PrintCalibration(cmd.OutOrStdout(), sum) //nolint: wrapcheck
	})
	x.flags(cmd)
	cmd.Flags().IntVar(&x.params.Generations, "generations", 0, "Generations (default from config)")
	cmd.Flags().IntVar(&x.params.Population, "population", 0, "Population size (default from config)")
	cmd.Flags().IntVar(&x.params.Ticks, "ticks", 0, "Days of each status-quo run (default 100)")

	return cmd
}

func sensitivityCommand(cfg *config.Config) *cobra.Command {
	x := &experiment{cfg: cfg}
	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Computes Sobol indices of the behavioral parameters",
	}
	cmd.Run = offline(func(ctx context.Context, cmd *cobra.Command) error {
		l, p, err := x.lab(cmd, domain.RunKindSensitivity)
		if err != nil {
			return err
		}

		var reported int
		res, err := l.Sensitivity(ctx, p, func(done, total int) {
			if pct := done * 10 / total; pct > reported {
				reported = pct
				logger.Info(ctx, "sampling", zap.String("done", humanize.Comma(int64(done))+"/"+humanize.Comma(int64(total))))
			}
		})
		if err != nil {
			return err //nolint: wrapcheck
		}

		sum := res.Summary()
		if err := x.write(ctx, "indices.csv", func(w io.Writer) error { return report.WriteIndices(w, sum.Indices) }); err != nil {
			return err
		}

		return report.PrintIndices(cmd.OutOrStdout(), sum) //nolint: wrapcheck
	})
	x.flags(cmd)
	cmd.Flags().IntVar(&x.params.Samples, "samples", 0, "Base samples N; N*(k+2) model runs (default from config)")
	cmd.Flags().IntVar(&x.params.Ticks, "ticks", 0, "Days of each model run (default from config)")

	return cmd
}

// Package sensitivity runs a variance-based (Sobol) sensitivity analysis of
// the household behavior parameters.
package sensitivity

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"wastepolicy/pkg/abm"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
)

// Parameter is one input factor varied over [Min, Max].
type Parameter struct {
	Name     string
	Min, Max float64
	// Apply injects a sampled value into a barangay profile.
	Apply func(p *domain.BarangayProfile, v float64)
}

func (p Parameter) scale(u float64) float64 { return p.Min + u*(p.Max-p.Min) }

// DefaultParameters are the social influence weight, the cost sensitivity
// multiplier and the mean perceived behavioral control.
func DefaultParameters() []Parameter {
	return []Parameter{
		{
			Name: "social_influence_weight", Min: 0, Max: 1,
			Apply: func(p *domain.BarangayProfile, v float64) { p.Behavior.NormWeight = v },
		},
		{
			Name: "cost_sensitivity", Min: 0.1, Max: 5,
			Apply: func(p *domain.BarangayProfile, v float64) {
				p.Behavior.EffortCost *= v
				p.Behavior.MonetaryCost *= v
			},
		},
		{
			Name: "perceived_control_mean", Min: 0.2, Max: 0.8,
			Apply: func(p *domain.BarangayProfile, v float64) { p.Behavior.ControlMean = v },
		},
	}
}

// Options configures an analysis.
type Options struct {
	Profiles   []domain.BarangayProfile
	Model      abm.Options
	Parameters []Parameter
	// Samples is the number of base samples N; the model is evaluated
	// N*(k+2) times.
	Samples int
	Ticks   int
	// Window is the number of final ticks averaged into the model output.
	Window    int
	Resamples int
	Seed      uint64
	// Parallelism bounds concurrent model evaluations. Zero means GOMAXPROCS.
	Parallelism int
}

// DefaultOptions samples 64 points and runs one simulated year per point.
func DefaultOptions() Options {
	return Options{
		Profiles:   domain.DefaultProfiles(),
		Model:      abm.DefaultOptions(),
		Parameters: DefaultParameters(),
		Samples:    64,
		Ticks:      365,
		Window:     50,
		Resamples:  100,
		Seed:       42,
	}
}

// Result is the outcome of an analysis.
type Result struct {
	Parameters []string
	Indices    []Indices
	Outputs    []float64
	Samples    int
}

// Summary converts r for persistence, ordered by total index.
func (r Result) Summary() domain.SensitivitySummary {
	out := domain.SensitivitySummary{
		Samples:     r.Samples,
		Evaluations: len(r.Outputs),
		Indices:     make([]domain.SensitivityIndex, len(r.Indices)),
	}
	for i, idx := range r.Indices {
		out.Indices[i] = domain.SensitivityIndex{
			Parameter: r.Parameters[i],
			S1:        idx.S1,
			S1Conf:    idx.S1Conf,
			ST:        idx.ST,
			STConf:    idx.STConf,
		}
	}
	sort.SliceStable(out.Indices, func(i, j int) bool { return out.Indices[i].ST > out.Indices[j].ST })

	return out
}

// Analyze samples the parameter space, evaluates the model at every point and
// estimates Sobol indices. progress, if set, is called after each evaluation
// and never concurrently.
func Analyze(ctx context.Context, opts Options, progress func(done, total int)) (Result, error) {
	k := len(opts.Parameters)
	if k == 0 || len(opts.Profiles) == 0 {
		return Result{}, fmt.Errorf("sensitivity analysis needs parameters and profiles")
	}
	if opts.Samples < 2 || opts.Ticks <= 0 {
		return Result{}, fmt.Errorf("invalid sensitivity options: samples=%d ticks=%d", opts.Samples, opts.Ticks)
	}

	design := Sample(opts.Parameters, opts.Samples, opts.Seed)
	rows := design.Rows()
	y := make([]float64, len(rows))

	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, row := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			y[i] = Output(opts, row)

			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(rows))
			}
			mu.Unlock()

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	logger.Debug(ctx, "sensitivity evaluations finished", zap.Int("evaluations", len(rows)))

	rng := rand.New(rand.NewPCG(opts.Seed, 0xda3e39cb94b95bdb)) //nolint: gosec
	res := Result{
		Parameters: make([]string, k),
		Indices:    Estimate(y, opts.Samples, k, opts.Resamples, rng),
		Outputs:    y,
		Samples:    opts.Samples,
	}
	for i, p := range opts.Parameters {
		res.Parameters[i] = p.Name
	}

	return res, nil
}

// Output runs every profile with the parameter values in row applied and
// returns the mean barangay compliance over the final window.
func Output(opts Options, row []float64) float64 {
	means := make([]float64, opts.Ticks)
	for i, p := range opts.Profiles {
		for j, param := range opts.Parameters {
			param.Apply(&p, row[j])
		}

		mo := opts.Model
		mo.Seed = opts.Model.Seed + uint64(i) //nolint: gosec
		m := abm.NewModel(p, mo)
		m.Run(opts.Ticks)
		for t, s := range m.Collector().Rows() {
			means[t] += s.ComplianceRate / float64(len(opts.Profiles))
		}
	}

	window := means
	if opts.Window > 0 && opts.Window < len(means) {
		window = means[len(means)-opts.Window:]
	}

	return stat.Mean(window, nil)
}

// Package calibration tunes barangay behavior profiles with a genetic search
// so the status quo settles inside a target compliance band.
package calibration

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wastepolicy/pkg/abm"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
)

// Options configures a calibration.
type Options struct {
	Profiles    []domain.BarangayProfile
	Model       abm.Options
	Ranges      Ranges
	Target      Target
	Generations int
	Population  int
	// Ticks is the length of each status-quo run.
	Ticks int
	Seed  uint64
	// Parallelism bounds concurrent genome evaluations. Zero means GOMAXPROCS.
	Parallelism int
}

// DefaultOptions runs 8 generations of 15 genomes under status-quo levers.
func DefaultOptions() Options {
	m := abm.DefaultOptions()
	m.Seed = 42

	return Options{
		Profiles:    domain.DefaultProfiles(),
		Model:       m,
		Ranges:      DefaultRanges(),
		Target:      DefaultTarget(),
		Generations: 8,
		Population:  15,
		Ticks:       100,
		Seed:        42,
	}
}

// Generation summarises one generation.
type Generation struct {
	Index int
	Best  Score
	Mean  float64
}

// Result is the outcome of a calibration.
type Result struct {
	Best        Genome
	Score       Score
	Profiles    []domain.BarangayProfile
	Generations []Generation
}

// Summary converts r for persistence.
func (r Result) Summary() domain.CalibrationSummary {
	return domain.CalibrationSummary{
		Generations: len(r.Generations),
		Fitness:     r.Score.Fitness,
		Genes:       r.Best.Genes(r.Profiles),
		Compliance:  r.Score.Compliance,
	}
}

type scored struct {
	genome Genome
	score  Score
}

// Run evolves the population and returns the best genome seen.
func Run(ctx context.Context, opts Options, onGeneration func(Generation)) (Result, error) {
	if len(opts.Profiles) == 0 {
		return Result{}, fmt.Errorf("no barangay profiles")
	}
	if opts.Generations <= 0 || opts.Population < 2 || opts.Ticks <= 0 {
		return Result{}, fmt.Errorf("invalid calibration options: generations=%d population=%d ticks=%d",
			opts.Generations, opts.Population, opts.Ticks)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)) //nolint: gosec
	population := make([]Genome, opts.Population)
	for i := range population {
		population[i] = RandomGenome(rng, opts.Profiles, opts.Ranges)
	}

	res := Result{Score: Score{Fitness: -1e18}}
	for gen := range opts.Generations {
		ranked, err := evaluate(ctx, opts, population)
		if err != nil {
			return Result{}, err
		}

		var total float64
		for _, s := range ranked {
			total += s.score.Fitness
		}
		g := Generation{Index: gen + 1, Best: ranked[0].score, Mean: total / float64(len(ranked))}
		res.Generations = append(res.Generations, g)
		if ranked[0].score.Fitness > res.Score.Fitness {
			res.Best, res.Score = ranked[0].genome.Clone(), ranked[0].score
		}

		logger.Debug(ctx, "calibration generation",
			zap.Int("generation", g.Index),
			zap.Float64("bestFitness", g.Best.Fitness),
			zap.Float64("bestCompliance", g.Best.Compliance),
			zap.Float64("meanFitness", g.Mean),
		)
		if onGeneration != nil {
			onGeneration(g)
		}

		if gen == opts.Generations-1 {
			break
		}

		survivors := ranked[:max(1, opts.Population/2)]
		next := make([]Genome, 0, opts.Population)
		for _, s := range survivors {
			next = append(next, s.genome)
		}
		for len(next) < opts.Population {
			child := survivors[rng.IntN(len(survivors))].genome.Clone()
			child.Mutate(rng, opts.Profiles, opts.Ranges)
			next = append(next, child)
		}
		population = next
	}

	res.Profiles = res.Best.Apply(opts.Profiles, opts.Ranges)

	return res, nil
}

func evaluate(ctx context.Context, opts Options, population []Genome) ([]scored, error) {
	out := make([]scored, len(population))

	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, genome := range population {
		g.Go(func() error {
			history, finals, err := Simulate(gctx, genome.Apply(opts.Profiles, opts.Ranges), opts.Model, opts.Ticks)
			if err != nil {
				return err
			}
			out[i] = scored{genome: genome, score: opts.Target.Evaluate(history, finals)}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score.Fitness > out[j].score.Fitness })

	return out, nil
}

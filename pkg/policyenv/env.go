// Package policyenv exposes the municipality as a reinforcement learning
// environment. One decision step is a quarter: the chosen levers are applied
// to every barangay model and all models are advanced in parallel.
package policyenv

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"wastepolicy/pkg/abm"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/metrics"
)

var (
	// ErrNotReset is returned when Step is called before Reset.
	ErrNotReset = errors.New("environment must be reset before stepping")
	// ErrTerminated is returned when Step is called on a finished episode.
	ErrTerminated = errors.New("episode already terminated")
	// ErrBadAction is returned for actions that are neither broadcast nor per-barangay.
	ErrBadAction = errors.New("action must hold one lever set or one per barangay")
)

// RewardWeights weighs the terms of the quarterly reward.
type RewardWeights struct {
	Compliance float64 `json:"compliance"`
	Improper   float64 `json:"improper"`
	Cost       float64 `json:"cost"`
}

// Options configures an Env.
type Options struct {
	Profiles []domain.BarangayProfile
	// Model holds the behavioral constants shared by every barangay. Its seed
	// and levers are overridden on Reset.
	Model abm.Options

	TicksPerQuarter int
	MaxQuarters     int
	Weights         RewardWeights
	// InitialLevers are applied on Reset until the first action arrives.
	InitialLevers domain.Levers

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// DefaultOptions runs the seven default barangays for three years.
func DefaultOptions() Options {
	return Options{
		Profiles:        domain.DefaultProfiles(),
		Model:           abm.DefaultOptions(),
		TicksPerQuarter: 90,
		MaxQuarters:     12,
		Weights:         RewardWeights{Compliance: 10, Improper: 5, Cost: 2},
		InitialLevers:   domain.Levers{Fine: 0.1, Incentive: 0.1, IEC: 0.1},
	}
}

// BarangayObservation is the end-of-quarter state of one barangay.
type BarangayObservation struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Compliance   float64       `json:"compliance"`
	Improper     int           `json:"improper"`
	ImproperRate float64       `json:"improperRate"`
	Collections  int           `json:"collections"`
	Levers       domain.Levers `json:"levers"`
}

// Observation is what the policy sees after each quarter.
type Observation struct {
	Quarter            int                   `json:"quarter"`
	MeanCompliance     float64               `json:"meanCompliance"`
	TotalImproper      int                   `json:"totalImproper"`
	ImproperRate       float64               `json:"improperRate"`
	QuarterCollections int                   `json:"quarterCollections"`
	Barangays          []BarangayObservation `json:"barangays"`
}

// StepResult is the outcome of a single quarter.
type StepResult struct {
	Observation Observation `json:"observation"`
	Reward      float64     `json:"reward"`
	PolicyCost  float64     `json:"policyCost"`
	Terminated  bool        `json:"terminated"`
}

// Env runs one abm.Model per barangay.
type Env struct {
	opts Options

	models       []*abm.Model
	quarterStart []int
	quarter      int
	ready        bool
}

// New validates opts and builds an environment. Reset must be called before Step.
func New(opts Options) (*Env, error) {
	if len(opts.Profiles) == 0 {
		return nil, errors.New("at least one barangay profile is required")
	}
	if opts.TicksPerQuarter <= 0 {
		return nil, fmt.Errorf("ticks per quarter must be positive, got %d", opts.TicksPerQuarter)
	}
	if opts.MaxQuarters <= 0 {
		return nil, fmt.Errorf("max quarters must be positive, got %d", opts.MaxQuarters)
	}

	return &Env{opts: opts}, nil
}

func (e *Env) NumBarangays() int      { return len(e.opts.Profiles) }
func (e *Env) MaxQuarters() int       { return e.opts.MaxQuarters }
func (e *Env) TicksPerQuarter() int   { return e.opts.TicksPerQuarter }
func (e *Env) Quarter() int           { return e.quarter }
func (e *Env) Models() []*abm.Model   { return e.models }
func (e *Env) Weights() RewardWeights { return e.opts.Weights }
func (e *Env) Done() bool             { return e.ready && e.quarter >= e.opts.MaxQuarters }

// Reset rebuilds every barangay model. Model i is seeded with seed+i.
func (e *Env) Reset(seed uint64) Observation {
	e.models = make([]*abm.Model, len(e.opts.Profiles))
	e.quarterStart = make([]int, len(e.opts.Profiles))
	for i, p := range e.opts.Profiles {
		mo := e.opts.Model
		mo.Seed = seed + uint64(i) //nolint: gosec
		mo.Levers = e.opts.InitialLevers
		e.models[i] = abm.NewModel(p, mo)
	}
	e.quarter = 0
	e.ready = true

	return e.observe()
}

// Step applies action, advances every model one quarter concurrently and
// returns the aggregated observation and reward.
func (e *Env) Step(ctx context.Context, action domain.Action) (StepResult, error) {
	if !e.ready {
		return StepResult{}, ErrNotReset
	}
	if e.quarter >= e.opts.MaxQuarters {
		return StepResult{}, ErrTerminated
	}
	n := len(e.models)
	if len(action) != 1 && len(action) != n {
		return StepResult{}, fmt.Errorf("%w: got %d for %d barangays", ErrBadAction, len(action), n)
	}

	for i, m := range e.models {
		e.quarterStart[i] = m.Snapshot().Collections
		m.SetLevers(action.For(i))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range e.models {
		g.Go(func() error {
			for range e.opts.TicksPerQuarter {
				if err := gctx.Err(); err != nil {
					return err
				}
				m.Step()
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StepResult{}, fmt.Errorf("could not simulate quarter %d: %w", e.quarter+1, err)
	}
	e.quarter++

	obs := e.observe()
	cost := action.Cost(n)
	w := e.opts.Weights
	reward := w.Compliance*obs.MeanCompliance - w.Improper*obs.ImproperRate - w.Cost*cost

	if e.opts.Metrics != nil {
		for _, m := range e.models {
			e.opts.Metrics.TicksTotal.WithLabelValues(m.Profile().Name).Add(float64(e.opts.TicksPerQuarter))
		}
		e.opts.Metrics.QuartersTotal.Inc()
	}

	return StepResult{
		Observation: obs,
		Reward:      reward,
		PolicyCost:  cost,
		Terminated:  e.quarter >= e.opts.MaxQuarters,
	}, nil
}

// Observation returns the current aggregated state without advancing.
func (e *Env) Observation() Observation {
	return e.observe()
}

func (e *Env) observe() Observation {
	obs := Observation{
		Quarter:   e.quarter,
		Barangays: make([]BarangayObservation, len(e.models)),
	}
	if len(e.models) == 0 {
		return obs
	}

	var households int
	var compliance float64
	for i, m := range e.models {
		s := m.Snapshot()
		p := m.Profile()
		collected := s.Collections
		if e.quarter > 0 {
			collected -= e.quarterStart[i]
		}
		obs.Barangays[i] = BarangayObservation{
			ID:           p.ID,
			Name:         p.Name,
			Compliance:   s.ComplianceRate,
			Improper:     s.ImproperDisposal,
			ImproperRate: s.ImproperRate,
			Collections:  collected,
			Levers:       m.Levers(),
		}
		compliance += s.ComplianceRate
		obs.TotalImproper += s.ImproperDisposal
		obs.QuarterCollections += collected
		households += len(m.Households())
	}

	obs.MeanCompliance = compliance / float64(len(e.models))
	if households > 0 {
		obs.ImproperRate = float64(obs.TotalImproper) / float64(households)
	}

	return obs
}

package abm

import (
	"math/rand/v2"

	"wastepolicy/pkg/domain"
)

// Options tunes the behavioral constants of a Model.
type Options struct {
	// Seed makes a model run reproducible.
	Seed uint64
	// Levers are the initial policy levers.
	Levers domain.Levers

	VehicleCapacity int
	PatrolRange     int
	CatchRadius     int
	NormRadius      int
	FineDuration    int

	// MaxUncollected is the number of uncollected days after which compliant
	// households start losing trust in the collection service.
	MaxUncollected int
	// MaxDisposalWait is the number of uncollected days after which
	// non-compliant households dispose of their waste improperly.
	MaxDisposalWait int
	TrustDecay      float64

	ComplianceThreshold float64
	UtilityNoise        float64
	// LeverScale converts lever intensities into utility units.
	LeverScale        float64
	RecentFinePenalty float64
	IECBoost          float64
	IncentiveBoost    float64

	ReactanceThreshold float64
	ReactancePenalty   float64
}

// DefaultOptions returns the calibrated behavioral constants.
func DefaultOptions() Options {
	return Options{
		Levers:              domain.Levers{Fine: 0.1, Incentive: 0.1, IEC: 0.1},
		VehicleCapacity:     10,
		PatrolRange:         5,
		CatchRadius:         1,
		NormRadius:          2,
		FineDuration:        5,
		MaxUncollected:      10,
		MaxDisposalWait:     15,
		TrustDecay:          0.1,
		ComplianceThreshold: 0.5,
		UtilityNoise:        0.05,
		LeverScale:          0.3,
		RecentFinePenalty:   0.2,
		IECBoost:            0.02,
		IncentiveBoost:      0.01,
		ReactanceThreshold:  0.8,
		ReactancePenalty:    0.002,
	}
}

type stepper interface {
	step(m *Model)
}

// Model simulates a single barangay.
type Model struct {
	profile domain.BarangayProfile
	opts    Options
	rng     *rand.Rand
	grid    *Grid
	levers  domain.Levers

	households []*Household
	officials  []*Official
	vehicles   []*Vehicle
	schedule   []stepper

	tick        int
	collections int
	fines       int
	incentives  int

	collector *Collector
}

// NewModel populates a barangay from its profile. Households are placed on
// random empty cells, then officials, then vehicles.
func NewModel(profile domain.BarangayProfile, opts Options) *Model {
	m := &Model{
		profile:   profile,
		opts:      opts,
		rng:       rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)), //nolint: gosec
		grid:      NewGrid(profile.Width, profile.Height),
		levers:    opts.Levers.Clamp(),
		collector: &Collector{},
	}

	id := 0
	for range max(profile.Households, 0) {
		compliant := m.rng.Float64() < profile.InitialCompliance
		h := &Household{
			id:         id,
			Income:     m.drawIncome(),
			Control:    clamp(profile.Behavior.ControlMean+m.rng.NormFloat64()*0.1, 0.2, 1.0),
			SocialNorm: 0.5,
			Compliant:  compliant,
			Attitude:   0.3,
		}
		if compliant {
			h.Attitude = 0.66
		}
		m.grid.Place(h, m.grid.RandomEmpty(m.rng))
		m.households = append(m.households, h)
		m.schedule = append(m.schedule, h)
		id++
	}

	for range max(profile.Officials, 0) {
		o := &Official{id: id}
		m.grid.Place(o, m.grid.RandomEmpty(m.rng))
		m.officials = append(m.officials, o)
		m.schedule = append(m.schedule, o)
		id++
	}

	for range max(profile.Vehicles, 0) {
		v := &Vehicle{id: id}
		m.grid.Place(v, m.grid.RandomEmpty(m.rng))
		m.vehicles = append(m.vehicles, v)
		m.schedule = append(m.schedule, v)
		id++
	}

	return m
}

func (m *Model) drawIncome() domain.IncomeLevel {
	mix := m.profile.IncomeMix
	total := mix[0] + mix[1] + mix[2]
	if total <= 0 {
		return domain.IncomeLow
	}

	r := m.rng.Float64() * total
	switch {
	case r < mix[0]:
		return domain.IncomeLow
	case r < mix[0]+mix[1]:
		return domain.IncomeMid
	default:
		return domain.IncomeHigh
	}
}

// SetLevers changes the policy levers applied from the next tick on.
func (m *Model) SetLevers(l domain.Levers) {
	m.levers = l.Clamp()
}

func (m *Model) Levers() domain.Levers           { return m.levers }
func (m *Model) Profile() domain.BarangayProfile { return m.profile }
func (m *Model) Grid() *Grid                     { return m.grid }
func (m *Model) Households() []*Household        { return m.households }
func (m *Model) Officials() []*Official          { return m.officials }
func (m *Model) Vehicles() []*Vehicle            { return m.vehicles }
func (m *Model) Collector() *Collector           { return m.collector }
func (m *Model) Tick() int                       { return m.tick }

// Step activates every agent once in random order and records a snapshot.
func (m *Model) Step() {
	m.rng.Shuffle(len(m.schedule), func(i, j int) {
		m.schedule[i], m.schedule[j] = m.schedule[j], m.schedule[i]
	})
	for _, a := range m.schedule {
		a.step(m)
	}

	m.tick++
	m.collector.collect(m.Snapshot())
}

// Run advances the model n ticks.
func (m *Model) Run(n int) {
	for range n {
		m.Step()
	}
}

// Snapshot summarises the current state of the model.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Tick:        m.tick,
		Collections: m.collections,
		Fines:       m.fines,
		Incentives:  m.incentives,
	}

	n := len(m.households)
	if n == 0 {
		return s
	}

	var compliant int
	var attitude, norm float64
	for _, h := range m.households {
		if h.Compliant {
			compliant++
		}
		if h.Improper {
			s.ImproperDisposal++
		}
		attitude += h.Attitude
		norm += h.SocialNorm
	}

	s.ComplianceRate = float64(compliant) / float64(n)
	s.ImproperRate = float64(s.ImproperDisposal) / float64(n)
	s.MeanAttitude = attitude / float64(n)
	s.MeanNorm = norm / float64(n)

	return s
}

package domain

import (
	"errors"
	"fmt"
)

// IncomeLevel is the coarse income bracket of a household.
type IncomeLevel int

const (
	// IncomeLow households are the most sensitive to costs, fines and incentives.
	IncomeLow IncomeLevel = iota + 1
	// IncomeMid households have moderate cost sensitivity.
	IncomeMid
	// IncomeHigh households have the baseline cost sensitivity.
	IncomeHigh
)

// Gamma returns the income sensitivity multiplier applied to the net cost of
// segregating waste.
func (l IncomeLevel) Gamma() float64 {
	switch l {
	case IncomeLow:
		return 1.5
	case IncomeMid:
		return 1.2
	default:
		return 1.0
	}
}

// BehaviorProfile holds the Theory of Planned Behavior weights and cost
// parameters shared by the households of a barangay.
type BehaviorProfile struct {
	// AttitudeWeight weighs the household's own attitude towards segregation.
	AttitudeWeight float64 `json:"attitudeWeight" yaml:"attitudeWeight"`
	// NormWeight weighs the perceived social norm of neighbouring households.
	NormWeight float64 `json:"normWeight" yaml:"normWeight"`
	// ControlWeight weighs perceived behavioral control (ease of segregating).
	ControlWeight float64 `json:"controlWeight" yaml:"controlWeight"`
	// EffortCost is the non-monetary cost of segregating.
	EffortCost float64 `json:"effortCost" yaml:"effortCost"`
	// MonetaryCost is the out-of-pocket cost of segregating (bags, bins).
	MonetaryCost float64 `json:"monetaryCost" yaml:"monetaryCost"`
	// AttitudeDecay is subtracted from every attitude each tick ("public forgetting").
	AttitudeDecay float64 `json:"attitudeDecay" yaml:"attitudeDecay"`
	// ControlMean is the mean of the normally distributed perceived control.
	ControlMean float64 `json:"controlMean" yaml:"controlMean"`
}

// DefaultBehavior is the behavior profile used when a barangay does not
// define its own.
func DefaultBehavior() BehaviorProfile {
	return BehaviorProfile{
		AttitudeWeight: 0.4,
		NormWeight:     0.3,
		ControlWeight:  0.3,
		EffortCost:     0.1,
		MonetaryCost:   0.05,
		AttitudeDecay:  0.005,
		ControlMean:    0.7,
	}
}

// BarangayProfile describes one barangay of the municipality: its
// population, enforcement and collection capacity and behavioral traits.
type BarangayProfile struct {
	ID   int    `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// Urban marks dense town centers where segregating is harder.
	Urban bool `json:"urban" yaml:"urban"`

	Households int `json:"households" yaml:"households"`
	Officials  int `json:"officials"  yaml:"officials"`
	Vehicles   int `json:"vehicles"   yaml:"vehicles"`

	// InitialCompliance is the probability that a household starts compliant.
	InitialCompliance float64 `json:"initialCompliance" yaml:"initialCompliance"`

	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// IncomeMix holds the share of low, mid and high income households.
	IncomeMix [3]float64 `json:"incomeMix" yaml:"incomeMix"`

	Behavior BehaviorProfile `json:"behavior" yaml:"behavior"`
}

// DefaultIncomeMix is the share of low, mid and high income households when
// a barangay does not define its own.
var DefaultIncomeMix = [3]float64{0.5, 0.3, 0.2} //nolint: gochecknoglobals

// Validate reports the first inconsistency of a profile.
func (p BarangayProfile) Validate() error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("id must be positive, got %d", p.ID)
	case p.Name == "":
		return errors.New("name is required")
	case p.Households <= 0:
		return fmt.Errorf("households must be positive, got %d", p.Households)
	case p.Officials < 0 || p.Vehicles < 0:
		return errors.New("officials and vehicles must not be negative")
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", p.Width, p.Height)
	case p.InitialCompliance < 0 || p.InitialCompliance > 1:
		return fmt.Errorf("initial compliance must be in [0, 1], got %v", p.InitialCompliance)
	}

	var mix float64
	for _, share := range p.IncomeMix {
		if share < 0 {
			return errors.New("income shares must not be negative")
		}
		mix += share
	}
	if mix <= 0 {
		return errors.New("income mix must not be empty")
	}

	return nil
}

func defaultProfile(id int, name string, households, officials, vehicles int, compliance float64, side int) BarangayProfile {
	return BarangayProfile{
		ID:                id,
		Name:              name,
		Households:        households,
		Officials:         officials,
		Vehicles:          vehicles,
		InitialCompliance: compliance,
		Width:             side,
		Height:            side,
		IncomeMix:         DefaultIncomeMix,
		Behavior:          DefaultBehavior(),
	}
}

// DefaultProfiles returns the seven barangays of the municipality.
// Poblacion is the dense urban center with the hardest segregation barrier.
func DefaultProfiles() []BarangayProfile {
	poblacion := defaultProfile(1, "Poblacion", 200, 5, 2, 0.4, 30)
	poblacion.Behavior.EffortCost = 0.4
	poblacion.Urban = true

	return []BarangayProfile{
		poblacion,
		defaultProfile(2, "Liangan East", 50, 1, 1, 0.7, 15),
		defaultProfile(3, "Esperanza", 150, 3, 1, 0.3, 25),
		defaultProfile(4, "Binuni", 80, 2, 1, 0.5, 20),
		defaultProfile(5, "Demologan", 80, 2, 1, 0.5, 20),
		defaultProfile(6, "Mati", 80, 2, 1, 0.5, 20),
		defaultProfile(7, "Babalaya", 80, 2, 1, 0.5, 20),
	}
}

// SelectProfiles returns the profiles whose IDs are listed in ids, in the
// order given. An empty ids returns all profiles. The second result reports
// the first unknown ID, if any.
func SelectProfiles(all []BarangayProfile, ids []int) ([]BarangayProfile, int, bool) {
	if len(ids) == 0 {
		return all, 0, true
	}

	byID := make(map[int]BarangayProfile, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	out := make([]BarangayProfile, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, id, false
		}
		out = append(out, p)
	}

	return out, 0, true
}

package rl

import "wastepolicy/pkg/policyenv"

// State indexes a row of the Q table.
type State int

// Discretizer maps continuous observations onto a finite state space:
// mean compliance bins x improper-rate bins x quarter.
type Discretizer struct {
	ComplianceBins int `json:"complianceBins"`
	ImproperBins   int `json:"improperBins"`
	// ImproperCeiling is the improper-disposal rate mapped to the last bin.
	ImproperCeiling float64 `json:"improperCeiling"`
	// Quarters is the number of distinct quarter values, terminal one included.
	Quarters int `json:"quarters"`
}

// NewDiscretizer returns the default discretisation for episodes of maxQuarters.
func NewDiscretizer(maxQuarters int) Discretizer {
	return Discretizer{
		ComplianceBins:  10,
		ImproperBins:    5,
		ImproperCeiling: 0.5,
		Quarters:        maxQuarters + 1,
	}
}

// NumStates is the size of the state space.
func (d Discretizer) NumStates() int {
	return d.ComplianceBins * d.ImproperBins * d.Quarters
}

// State returns the state index of obs.
func (d Discretizer) State(obs policyenv.Observation) State {
	c := bin(obs.MeanCompliance, 1, d.ComplianceBins)
	i := bin(obs.ImproperRate, d.ImproperCeiling, d.ImproperBins)
	q := min(max(obs.Quarter, 0), d.Quarters-1)

	return State((q*d.ImproperBins+i)*d.ComplianceBins + c)
}

func bin(v, ceiling float64, bins int) int {
	if ceiling <= 0 || v <= 0 {
		return 0
	}

	return min(int(v/ceiling*float64(bins)), bins-1)
}

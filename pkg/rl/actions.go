package rl

import "wastepolicy/pkg/domain"

// LeverLevels are the intensities each lever can take in the action catalogue.
var LeverLevels = []float64{0, 0.25, 0.5, 0.75, 1} //nolint: gochecknoglobals

// Catalogue enumerates the discrete uniform actions available to the learner.
type Catalogue []domain.Levers

// DefaultCatalogue holds every combination of LeverLevels, Fine varying slowest.
func DefaultCatalogue() Catalogue {
	out := make(Catalogue, 0, len(LeverLevels)*len(LeverLevels)*len(LeverLevels))
	for _, fine := range LeverLevels {
		for _, incentive := range LeverLevels {
			for _, iec := range LeverLevels {
				out = append(out, domain.Levers{Fine: fine, Incentive: incentive, IEC: iec})
			}
		}
	}

	return out
}

// Nearest returns the index of the catalogue entry closest to l.
func (c Catalogue) Nearest(l domain.Levers) int {
	best, bestD := 0, -1.0
	for i, a := range c {
		df, di, de := a.Fine-l.Fine, a.Incentive-l.Incentive, a.IEC-l.IEC
		if d := df*df + di*di + de*de; bestD < 0 || d < bestD {
			best, bestD = i, d
		}
	}

	return best
}

package calibration

import (
	"fmt"
	"math/rand/v2"

	"wastepolicy/pkg/domain"
)

// Range is a closed interval genes are drawn from or clamped to.
type Range struct {
	Min, Max float64
}

func (r Range) draw(rng *rand.Rand) float64 { return r.Min + rng.Float64()*(r.Max-r.Min) }
func (r Range) clamp(v float64) float64     { return max(r.Min, min(r.Max, v)) }

// Ranges bounds the search space.
type Ranges struct {
	Decay          Range
	AttitudeWeight Range
	NormWeight     Range
	// Modifier bounds the per-barangay jitter added to the common weights.
	Modifier  Range
	UrbanCost Range
	RuralCost Range
	// UrbanCostClamp and RuralCostClamp bound effort costs after mutation.
	UrbanCostClamp Range
	RuralCostClamp Range
	// Weight bounds the final per-barangay weights.
	Weight Range
}

// DefaultRanges mirrors the behavioral survey bands.
func DefaultRanges() Ranges {
	return Ranges{
		Decay:          Range{0.01, 0.05},
		AttitudeWeight: Range{0.4, 0.7},
		NormWeight:     Range{0.4, 0.7},
		Modifier:       Range{-0.05, 0.05},
		UrbanCost:      Range{0.35, 0.50},
		RuralCost:      Range{0.15, 0.35},
		UrbanCostClamp: Range{0.35, 0.55},
		RuralCostClamp: Range{0.15, 0.40},
		Weight:         Range{0.1, 0.9},
	}
}

// BarangayGenes are the per-barangay genes of a Genome.
type BarangayGenes struct {
	EffortCost  float64 `json:"effortCost"`
	AttitudeMod float64 `json:"attitudeMod"`
	NormMod     float64 `json:"normMod"`
}

// Genome is a candidate behavioral calibration of every barangay.
type Genome struct {
	Decay          float64         `json:"decay"`
	AttitudeWeight float64         `json:"attitudeWeight"`
	NormWeight     float64         `json:"normWeight"`
	Barangays      []BarangayGenes `json:"barangays"`
}

// RandomGenome draws a genome for the given profiles.
func RandomGenome(rng *rand.Rand, profiles []domain.BarangayProfile, r Ranges) Genome {
	g := Genome{
		Decay:          r.Decay.draw(rng),
		AttitudeWeight: r.AttitudeWeight.draw(rng),
		NormWeight:     r.NormWeight.draw(rng),
		Barangays:      make([]BarangayGenes, len(profiles)),
	}
	for i, p := range profiles {
		cost := r.RuralCost
		if p.Urban {
			cost = r.UrbanCost
		}
		g.Barangays[i] = BarangayGenes{
			EffortCost:  cost.draw(rng),
			AttitudeMod: r.Modifier.draw(rng),
			NormMod:     r.Modifier.draw(rng),
		}
	}

	return g
}

// Clone deep-copies g.
func (g Genome) Clone() Genome {
	g.Barangays = append([]BarangayGenes(nil), g.Barangays...)

	return g
}

// NumGenes counts the mutable genes.
func (g Genome) NumGenes() int { return 3 + 3*len(g.Barangays) }

// Mutate scales one random gene by a factor in [0.9, 1.1]. Effort costs are
// clamped to the urban or rural band afterwards.
func (g *Genome) Mutate(rng *rand.Rand, profiles []domain.BarangayProfile, r Ranges) {
	k := rng.IntN(g.NumGenes())
	f := 0.9 + rng.Float64()*0.2

	switch k {
	case 0:
		g.Decay *= f
	case 1:
		g.AttitudeWeight *= f
	case 2:
		g.NormWeight *= f
	default:
		i, gene := (k-3)/3, (k-3)%3
		b := &g.Barangays[i]
		switch gene {
		case 0:
			band := r.RuralCostClamp
			if profiles[i].Urban {
				band = r.UrbanCostClamp
			}
			b.EffortCost = band.clamp(b.EffortCost * f)
		case 1:
			b.AttitudeMod *= f
		default:
			b.NormMod *= f
		}
	}
}

// Apply returns copies of profiles with the genome's behavior injected.
func (g Genome) Apply(profiles []domain.BarangayProfile, r Ranges) []domain.BarangayProfile {
	out := make([]domain.BarangayProfile, len(profiles))
	for i, p := range profiles {
		b := g.Barangays[i]
		p.Behavior.AttitudeWeight = r.Weight.clamp(g.AttitudeWeight + b.AttitudeMod)
		p.Behavior.NormWeight = r.Weight.clamp(g.NormWeight + b.NormMod)
		p.Behavior.ControlWeight = 0.3
		p.Behavior.EffortCost = b.EffortCost
		p.Behavior.AttitudeDecay = g.Decay
		out[i] = p
	}

	return out
}

// Genes flattens the genome into named values.
func (g Genome) Genes(profiles []domain.BarangayProfile) map[string]float64 {
	out := map[string]float64{
		"decay":           g.Decay,
		"attitude_weight": g.AttitudeWeight,
		"norm_weight":     g.NormWeight,
	}
	for i, b := range g.Barangays {
		name := fmt.Sprintf("barangay_%d", i+1)
		if i < len(profiles) {
			name = profiles[i].Name
		}
		out[name+".effort_cost"] = b.EffortCost
		out[name+".attitude_mod"] = b.AttitudeMod
		out[name+".norm_mod"] = b.NormMod
	}

	return out
}

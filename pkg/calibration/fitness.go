package calibration

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"wastepolicy/pkg/abm"
	"wastepolicy/pkg/domain"
)

// Score breaks a genome's fitness into its parts.
type Score struct {
	Fitness    float64 `json:"fitness"`
	Compliance float64 `json:"compliance"`
	Diversity  float64 `json:"diversity"`
	Volatility float64 `json:"volatility"`
}

// Target describes the compliance band the status quo should settle in.
type Target struct {
	Low, High, Center float64
	// Window is the number of final ticks averaged into the compliance score.
	Window int
	// VolatilityWindow is the number of final ticks whose spread is penalised.
	VolatilityWindow int
	// MinDiversity is the spread between barangays below which a genome is
	// considered too uniform.
	MinDiversity float64
}

// DefaultTarget is the 10-16% status-quo compliance band.
func DefaultTarget() Target {
	return Target{
		Low:              0.10,
		High:             0.16,
		Center:           0.125,
		Window:           10,
		VolatilityWindow: 30,
		MinDiversity:     0.005,
	}
}

// Simulate runs every profile for ticks under fixed levers and returns the
// pooled compliance per tick plus the final compliance of each barangay.
func Simulate(ctx context.Context, profiles []domain.BarangayProfile, base abm.Options, ticks int) ([]float64, []float64, error) {
	pooled := make([]float64, ticks)
	finals := make([]float64, len(profiles))

	var households int
	for i, p := range profiles {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		opts := base
		opts.Seed = base.Seed + uint64(i) //nolint: gosec
		m := abm.NewModel(p, opts)
		m.Run(ticks)

		n := float64(len(m.Households()))
		for t, row := range m.Collector().Rows() {
			pooled[t] += row.ComplianceRate * n
		}
		finals[i] = m.Snapshot().ComplianceRate
		households += len(m.Households())
	}

	if households > 0 {
		for t := range pooled {
			pooled[t] /= float64(households)
		}
	}

	return pooled, finals, nil
}

// Evaluate scores a compliance history against the target band.
func (t Target) Evaluate(history, finals []float64) Score {
	var s Score
	if len(history) == 0 {
		return s
	}

	s.Compliance = stat.Mean(tail(history, t.Window), nil)
	switch dist := s.Compliance - t.Center; {
	case s.Compliance >= t.Low && s.Compliance <= t.High:
		s.Fitness = 2000 - abs(dist)*10000
	case s.Compliance < t.Low:
		s.Fitness = -1000 + s.Compliance*5000
	default:
		s.Fitness = -1000 - (s.Compliance-t.High)*5000
	}

	if len(finals) > 0 {
		_, s.Diversity = stat.PopMeanStdDev(finals, nil)
	}
	if s.Diversity < t.MinDiversity {
		s.Fitness -= 500
	} else {
		s.Fitness += s.Diversity * 2000
	}

	_, s.Volatility = stat.PopMeanStdDev(tail(history, t.VolatilityWindow), nil)
	s.Fitness -= s.Volatility * 1000

	return s
}

func tail(xs []float64, n int) []float64 {
	if n <= 0 || n >= len(xs) {
		return xs
	}

	return xs[len(xs)-n:]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}

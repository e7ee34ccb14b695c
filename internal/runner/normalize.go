package runner

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"wastepolicy/internal/config"
	"wastepolicy/pkg/domain"
)

// Limits bounds the parameters a run may request and supplies the defaults
// of parameters left at zero.
type Limits struct {
	Seed int64

	Ticks    int
	MaxTicks int

	TicksPerQuarter int
	Quarters        int
	MaxQuarters     int

	Episodes    int
	MaxEpisodes int

	Generations    int
	MaxGenerations int
	Population     int
	MaxPopulation  int

	Samples    int
	MaxSamples int
}

// NewLimits constructs Limits from the application config.
func NewLimits(cfg *config.Config) Limits {
	return Limits{
		Seed:            cfg.Simulation.Seed,
		Ticks:           cfg.Simulation.Ticks,
		MaxTicks:        cfg.Simulation.MaxTicks,
		TicksPerQuarter: cfg.Simulation.TicksPerQuarter,
		Quarters:        cfg.Simulation.Quarters,
		MaxQuarters:     cfg.Simulation.MaxQuarters,
		Episodes:        cfg.Training.Episodes,
		MaxEpisodes:     cfg.Training.MaxEpisodes,
		Generations:     cfg.Calibration.Generations,
		MaxGenerations:  cfg.Calibration.MaxGenerations,
		Population:      cfg.Calibration.Population,
		MaxPopulation:   cfg.Calibration.MaxPopulation,
		Samples:         cfg.Sensitivity.Samples,
		MaxSamples:      cfg.Sensitivity.MaxSamples,
	}
}

func bounded(name string, v, def, maxV int) (int, error) {
	switch {
	case v < 0:
		return 0, fmt.Errorf("%s must not be negative, got %d", name, v)
	case v == 0:
		return def, nil
	case maxV > 0 && v > maxV:
		return 0, fmt.Errorf("%s must be at most %d, got %d", name, maxV, v)
	default:
		return v, nil
	}
}

func validLevers(l domain.Levers) bool {
	in := func(v float64) bool { return v >= 0 && v <= 1 }

	return in(l.Fine) && in(l.Incentive) && in(l.IEC)
}

// NormalizeParams validates params against the limits and the known
// barangays and fills in the defaults relevant to kind. Parameters that kind
// does not use are cleared so stored runs show exactly what was executed.
func NormalizeParams(kind domain.RunKind, p domain.RunParams, limits Limits, profiles []domain.BarangayProfile) (domain.RunParams, error) {
	if !kind.Valid() {
		return domain.RunParams{}, fmt.Errorf("unknown run kind %q", kind)
	}

	out := domain.RunParams{Seed: cmp.Or(p.Seed, limits.Seed)}

	if len(p.Barangays) > 0 {
		ids := slices.Clone(p.Barangays)
		slices.Sort(ids)
		if len(slices.Compact(ids)) != len(p.Barangays) {
			return domain.RunParams{}, errors.New("barangays must not repeat")
		}
		if _, missing, ok := domain.SelectProfiles(profiles, p.Barangays); !ok {
			return domain.RunParams{}, fmt.Errorf("unknown barangay %d", missing)
		}
		out.Barangays = p.Barangays
	}

	if p.Levers != nil && !validLevers(*p.Levers) {
		return domain.RunParams{}, errors.New("levers must be in [0, 1]")
	}

	var err error
	switch kind {
	case domain.RunKindSimulate, domain.RunKindSensitivity:
		if out.Ticks, err = bounded("ticks", p.Ticks, limits.Ticks, limits.MaxTicks); err != nil {
			return domain.RunParams{}, err
		}
	case domain.RunKindCalibrate:
		// zero keeps the status-quo length of the calibration runs
		if out.Ticks, err = bounded("ticks", p.Ticks, 0, limits.MaxTicks); err != nil {
			return domain.RunParams{}, err
		}
	}

	switch kind {
	case domain.RunKindTrain, domain.RunKindEvaluate, domain.RunKindScenarios:
		if out.Quarters, err = bounded("quarters", p.Quarters, limits.Quarters, limits.MaxQuarters); err != nil {
			return domain.RunParams{}, err
		}
		if out.TicksPerQuarter, err = bounded("ticksPerQuarter", p.TicksPerQuarter, limits.TicksPerQuarter, limits.MaxTicks); err != nil {
			return domain.RunParams{}, err
		}
	}

	switch kind {
	case domain.RunKindSimulate:
		out.Levers = p.Levers
	case domain.RunKindTrain:
		if out.Episodes, err = bounded("episodes", p.Episodes, limits.Episodes, limits.MaxEpisodes); err != nil {
			return domain.RunParams{}, err
		}
	case domain.RunKindEvaluate:
		if p.PolicyID != nil && p.Levers != nil {
			return domain.RunParams{}, errors.New("policyId and levers are mutually exclusive")
		}
		if out.Episodes, err = bounded("episodes", p.Episodes, 1, limits.MaxEpisodes); err != nil {
			return domain.RunParams{}, err
		}
		out.PolicyID, out.Levers = p.PolicyID, p.Levers
	case domain.RunKindScenarios:
		out.PolicyID = p.PolicyID
	case domain.RunKindCalibrate:
		if out.Generations, err = bounded("generations", p.Generations, limits.Generations, limits.MaxGenerations); err != nil {
			return domain.RunParams{}, err
		}
		if out.Population, err = bounded("population", p.Population, limits.Population, limits.MaxPopulation); err != nil {
			return domain.RunParams{}, err
		}
		if out.Population < 2 {
			return domain.RunParams{}, fmt.Errorf("population must be at least 2, got %d", out.Population)
		}
	case domain.RunKindSensitivity:
		if out.Samples, err = bounded("samples", p.Samples, limits.Samples, limits.MaxSamples); err != nil {
			return domain.RunParams{}, err
		}
		if out.Samples < 2 {
			return domain.RunParams{}, fmt.Errorf("samples must be at least 2, got %d", out.Samples)
		}
	}

	return out, nil
}

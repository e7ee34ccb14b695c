package rl

import (
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/policyenv"
)

// Probe is a hypothetical situation put to a policy.
type Probe struct {
	Name        string                `json:"name"`
	Observation policyenv.Observation `json:"observation"`
}

// Answer is the policy's reaction to a Probe.
type Answer struct {
	Probe  string        `json:"probe"`
	Action domain.Action `json:"action"`
	// Compliance holds the per-barangay compliance shown to the policy.
	Compliance []float64 `json:"compliance"`
}

// ProbeObservation builds an observation from per-barangay compliance rates
// and a common improper-disposal rate.
func ProbeObservation(quarter int, compliance []float64, improperRate float64) policyenv.Observation {
	obs := policyenv.Observation{
		Quarter:      quarter,
		ImproperRate: improperRate,
		Barangays:    make([]policyenv.BarangayObservation, len(compliance)),
	}

	var sum float64
	for i, c := range compliance {
		obs.Barangays[i] = policyenv.BarangayObservation{ID: i + 1, Compliance: c, ImproperRate: improperRate}
		sum += c
	}
	if len(compliance) > 0 {
		obs.MeanCompliance = sum / float64(len(compliance))
	}

	return obs
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func oneOff(n int, first, rest float64) []float64 {
	out := filled(n, rest)
	if n > 0 {
		out[0] = first
	}

	return out
}

// DefaultProbes returns uniform and differentiated situations for n barangays
// at the given quarter.
func DefaultProbes(n, quarter int) []Probe {
	return []Probe{
		{Name: "baseline_all_zero", Observation: ProbeObservation(quarter, filled(n, 0), 0)},
		{Name: "baseline_all_low", Observation: ProbeObservation(quarter, filled(n, 0.1), 0.3)},
		{Name: "baseline_all_medium", Observation: ProbeObservation(quarter, filled(n, 0.5), 0.1)},
		{Name: "baseline_all_high", Observation: ProbeObservation(quarter, filled(n, 0.9), 0)},
		{Name: "differentiated_one_low", Observation: ProbeObservation(quarter, oneOff(n, 0.1, 0.7), 0.05)},
		{Name: "differentiated_one_high", Observation: ProbeObservation(quarter, oneOff(n, 0.9, 0.3), 0.15)},
	}
}

// Interrogate asks p how it would react to each probe.
func Interrogate(p Policy, probes []Probe) []Answer {
	out := make([]Answer, 0, len(probes))
	for _, pr := range probes {
		compliance := make([]float64, len(pr.Observation.Barangays))
		for i, b := range pr.Observation.Barangays {
			compliance[i] = b.Compliance
		}
		out = append(out, Answer{
			Probe:      pr.Name,
			Action:     p.Act(pr.Observation),
			Compliance: compliance,
		})
	}

	return out
}

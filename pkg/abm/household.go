package abm

import "wastepolicy/pkg/domain"

// Household is a single household deciding whether to segregate its waste.
type Household struct {
	id  int
	pos Pos

	Income domain.IncomeLevel

	Attitude   float64
	Control    float64
	SocialNorm float64
	Utility    float64

	Compliant bool
	// Improper is set while the household disposes of its waste improperly.
	Improper bool

	// DaysUncollected counts the ticks since a vehicle last collected.
	DaysUncollected int
	// FineTimer counts down the ticks a recent fine keeps weighing on the household.
	FineTimer int
}

func (h *Household) ID() int        { return h.id }
func (h *Household) Pos() Pos       { return h.pos }
func (h *Household) setPos(p Pos)   { h.pos = p }
func (h *Household) hasWaste() bool { return h.DaysUncollected > 0 }

func (h *Household) step(m *Model) {
	h.DaysUncollected++
	if h.FineTimer > 0 {
		h.FineTimer--
	}

	h.updateAttitude(m)
	h.SocialNorm = h.perceivedNorm(m)
	h.Utility = h.utility(m)
	h.Compliant = h.Utility > m.opts.ComplianceThreshold

	if h.Compliant && h.DaysUncollected > m.opts.MaxUncollected && m.rng.Float64() < m.opts.TrustDecay {
		h.Compliant = false
	}

	h.Improper = !h.Compliant && h.DaysUncollected > m.opts.MaxDisposalWait
}

func (h *Household) updateAttitude(m *Model) {
	h.Attitude -= m.profile.Behavior.AttitudeDecay
	h.Attitude += m.levers.IEC * m.opts.IECBoost
	if m.levers.Fine > m.opts.ReactanceThreshold {
		h.Attitude -= m.opts.ReactancePenalty
	}
	h.Attitude = clamp(h.Attitude, 0, 1)
}

// perceivedNorm weighs the compliance of nearby households asymmetrically:
// good examples are amplified and bad ones are buffered.
func (h *Household) perceivedNorm(m *Model) float64 {
	var total, compliant int
	for _, a := range m.grid.Neighbors(h.pos, m.opts.NormRadius, false) {
		other, ok := a.(*Household)
		if !ok {
			continue
		}
		total++
		if other.Compliant {
			compliant++
		}
	}
	if total == 0 {
		return 0.5
	}

	raw := float64(compliant) / float64(total)
	if raw > 0.5 {
		return min(1, raw*1.2)
	}

	return raw*0.8 + 0.2
}

func (h *Household) utility(m *Model) float64 {
	b := m.profile.Behavior
	tpb := b.AttitudeWeight*h.Attitude + b.NormWeight*h.SocialNorm + b.ControlWeight*h.Control

	incentive := m.levers.Incentive * m.opts.LeverScale
	fine := m.levers.Fine * m.opts.LeverScale
	if h.FineTimer > 0 {
		fine += m.opts.RecentFinePenalty
	}
	netCost := (b.EffortCost + b.MonetaryCost - incentive - fine) * h.Income.Gamma()

	return tpb - netCost + m.rng.NormFloat64()*m.opts.UtilityNoise
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

package abm

// Official is a barangay official (tanod) patrolling for violators.
type Official struct {
	id  int
	pos Pos
}

func (o *Official) ID() int      { return o.id }
func (o *Official) Pos() Pos     { return o.pos }
func (o *Official) setPos(p Pos) { o.pos = p }

func (o *Official) step(m *Model) {
	steps := m.grid.Neighborhood(o.pos, 1, false)
	next := o.pos

	if target, ok := o.closestViolator(m); ok {
		best := -1
		for _, p := range steps {
			if d := distance2(p, target.pos); best < 0 || d < best {
				best, next = d, p
			}
		}
	} else if len(steps) > 0 {
		next = steps[m.rng.IntN(len(steps))]
	}

	m.grid.Move(o, next)
	o.enforce(m)
}

func (o *Official) closestViolator(m *Model) (*Household, bool) {
	var (
		closest *Household
		best    int
	)
	for _, a := range m.grid.Neighbors(o.pos, m.opts.PatrolRange, false) {
		h, ok := a.(*Household)
		if !ok || h.Compliant {
			continue
		}
		if d := distance2(o.pos, h.pos); closest == nil || d < best {
			closest, best = h, d
		}
	}

	return closest, closest != nil
}

// enforce fines violators and rewards compliant households within the catch
// radius. Households sharing the official's cell are not inspected.
func (o *Official) enforce(m *Model) {
	for _, a := range m.grid.Neighbors(o.pos, m.opts.CatchRadius, false) {
		h, ok := a.(*Household)
		if !ok {
			continue
		}

		if !h.Compliant {
			h.FineTimer = m.opts.FineDuration
			m.fines++
			if m.rng.Float64() < m.levers.Fine {
				h.Compliant = true
				h.Improper = false
			}

			continue
		}

		if m.rng.Float64() < m.levers.Incentive {
			h.Attitude = clamp(h.Attitude+m.opts.IncentiveBoost, 0, 1)
			m.incentives++
		}
	}
}

package abm

// Vehicle is a collection truck serving compliant households.
type Vehicle struct {
	id  int
	pos Pos
}

func (v *Vehicle) ID() int      { return v.id }
func (v *Vehicle) Pos() Pos     { return v.pos }
func (v *Vehicle) setPos(p Pos) { v.pos = p }

// step visits up to VehicleCapacity random compliant households holding
// waste and collects it.
func (v *Vehicle) step(m *Model) {
	targets := make([]*Household, 0, len(m.households))
	for _, h := range m.households {
		if h.Compliant && h.hasWaste() {
			targets = append(targets, h)
		}
	}

	m.rng.Shuffle(len(targets), func(i, j int) { targets[i], targets[j] = targets[j], targets[i] })
	if len(targets) > m.opts.VehicleCapacity {
		targets = targets[:m.opts.VehicleCapacity]
	}

	for _, h := range targets {
		m.grid.Move(v, h.pos)
		h.DaysUncollected = 0
		m.collections++
	}
}

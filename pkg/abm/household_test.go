package abm

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/domain"
)

// bareModel is an empty 5x5 barangay without noise. Its only behavioral
// weight is attitude, so a household with attitude 1 always wants to
// comply and one with attitude 0 never does.
func bareModel(levers domain.Levers) *Model {
	opts := DefaultOptions()
	opts.UtilityNoise = 0
	opts.NormRadius = 1
	opts.TrustDecay = 1

	return &Model{
		profile: domain.BarangayProfile{
			Width:    5,
			Height:   5,
			Behavior: domain.BehaviorProfile{AttitudeWeight: 1},
		},
		opts:      opts,
		rng:       rand.New(rand.NewPCG(1, 2)), //nolint: gosec
		grid:      NewGrid(5, 5),
		levers:    levers,
		collector: &Collector{},
	}
}

func (m *Model) addHousehold(p Pos, compliant bool) *Household {
	h := &Household{id: len(m.households), Income: domain.IncomeHigh, Compliant: compliant}
	if compliant {
		h.Attitude = 1
	}
	m.grid.Place(h, p)
	m.households = append(m.households, h)

	return h
}

func TestPerceivedNorm(t *testing.T) {
	center := Pos{X: 2, Y: 2}
	ring := []Pos{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 1, Y: 2}}

	tests := []struct {
		name      string
		compliant []bool
		want      float64
	}{
		{"no neighbours", nil, 0.5},
		{"all compliant is capped", []bool{true, true, true, true}, 1},
		{"majority amplified", []bool{true, true, true, false}, 0.9},
		{"half buffered", []bool{true, true, false, false}, 0.6},
		{"minority buffered", []bool{true, false, false, false}, 0.4},
		{"none compliant", []bool{false, false, false, false}, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := bareModel(domain.Levers{})
			h := m.addHousehold(center, false)
			for i, c := range tt.compliant {
				m.addHousehold(ring[i], c)
			}
			// outside the norm radius
			m.addHousehold(Pos{X: 4, Y: 4}, true)

			require.InDelta(t, tt.want, h.perceivedNorm(m), 1e-9)
		})
	}

	t.Run("own cell and officials do not count", func(t *testing.T) {
		m := bareModel(domain.Levers{})
		h := m.addHousehold(center, false)
		m.addHousehold(center, true)
		m.grid.Place(&Official{id: 99}, Pos{X: 2, Y: 3})

		require.InDelta(t, 0.5, h.perceivedNorm(m), 1e-9)
	})
}

func TestHouseholdStep_Collection(t *testing.T) {
	tests := []struct {
		name          string
		willing       bool
		daysBefore    int
		wantCompliant bool
		wantImproper  bool
	}{
		{"willing within trust window", true, 9, true, false},
		{"willing loses trust after 10 days", true, 10, false, false},
		{"distrust turns improper after 15 days", true, 15, false, true},
		{"unwilling still waiting", false, 14, false, false},
		{"unwilling dumps after 15 days", false, 15, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := bareModel(domain.Levers{})
			h := m.addHousehold(Pos{X: 2, Y: 2}, tt.willing)
			h.DaysUncollected = tt.daysBefore

			h.step(m)

			require.Equal(t, tt.daysBefore+1, h.DaysUncollected)
			require.Equal(t, tt.wantCompliant, h.Compliant)
			require.Equal(t, tt.wantImproper, h.Improper)
		})
	}
}

func TestHouseholdStep_FineTimerCountsDown(t *testing.T) {
	m := bareModel(domain.Levers{})
	h := m.addHousehold(Pos{X: 0, Y: 0}, true)
	h.FineTimer = 5

	h.step(m)
	require.Equal(t, 4, h.FineTimer)

	h.FineTimer = 0
	h.step(m)
	require.Zero(t, h.FineTimer)
}

func TestUpdateAttitude_Reactance(t *testing.T) {
	tests := []struct {
		name   string
		levers domain.Levers
		want   float64
	}{
		{"no levers", domain.Levers{}, 0.5},
		{"fine at threshold", domain.Levers{Fine: 0.8}, 0.5},
		{"fine above threshold", domain.Levers{Fine: 0.9}, 0.498},
		{"full campaign", domain.Levers{IEC: 1}, 0.52},
		{"campaign against reactance", domain.Levers{Fine: 1, IEC: 1}, 0.518},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := bareModel(tt.levers)
			h := &Household{Attitude: 0.5}

			h.updateAttitude(m)
			require.InDelta(t, tt.want, h.Attitude, 1e-9)
		})
	}

	m := bareModel(domain.Levers{Fine: 1})
	h := &Household{}
	h.updateAttitude(m)
	require.Zero(t, h.Attitude)
}

func TestOfficialEnforce(t *testing.T) {
	t.Run("fines violators in the catch radius", func(t *testing.T) {
		m := bareModel(domain.Levers{})
		o := &Official{id: 100}
		m.grid.Place(o, Pos{X: 2, Y: 2})

		inRange := m.addHousehold(Pos{X: 2, Y: 3}, false)
		diagonal := m.addHousehold(Pos{X: 1, Y: 1}, false)
		sameCell := m.addHousehold(Pos{X: 2, Y: 2}, false)
		farAway := m.addHousehold(Pos{X: 4, Y: 4}, false)

		o.enforce(m)

		require.Equal(t, 5, inRange.FineTimer)
		require.Equal(t, 5, diagonal.FineTimer)
		require.Zero(t, sameCell.FineTimer)
		require.Zero(t, farAway.FineTimer)
		require.Equal(t, 2, m.fines)
		// a zero fine lever never converts
		require.False(t, inRange.Compliant)
	})

	t.Run("full fine converts on the spot", func(t *testing.T) {
		m := bareModel(domain.Levers{Fine: 1})
		o := &Official{id: 100}
		m.grid.Place(o, Pos{X: 2, Y: 2})
		h := m.addHousehold(Pos{X: 3, Y: 2}, false)
		h.Improper = true

		o.enforce(m)

		require.True(t, h.Compliant)
		require.False(t, h.Improper)
		require.Equal(t, 1, m.fines)
	})

	t.Run("rewards compliant households", func(t *testing.T) {
		m := bareModel(domain.Levers{Incentive: 1})
		o := &Official{id: 100}
		m.grid.Place(o, Pos{X: 2, Y: 2})
		h := m.addHousehold(Pos{X: 2, Y: 1}, true)
		h.Attitude = 0.5

		o.enforce(m)

		require.InDelta(t, 0.51, h.Attitude, 1e-9)
		require.Equal(t, 1, m.incentives)
		require.Zero(t, m.fines)
	})
}

func TestClosestViolator(t *testing.T) {
	m := bareModel(domain.Levers{})
	o := &Official{id: 100}
	m.grid.Place(o, Pos{X: 0, Y: 0})

	m.addHousehold(Pos{X: 0, Y: 0}, false)
	m.addHousehold(Pos{X: 1, Y: 1}, true)
	far := m.addHousehold(Pos{X: 3, Y: 3}, false)
	near := m.addHousehold(Pos{X: 2, Y: 0}, false)

	got, ok := o.closestViolator(m)
	require.True(t, ok)
	require.Same(t, near, got)
	require.NotSame(t, far, got)
}

func TestCollectorLast(t *testing.T) {
	c := &Collector{}
	for i := range 3 {
		c.collect(Snapshot{Tick: i + 1})
	}

	require.Nil(t, c.Last(-1))
	require.Nil(t, c.Last(0))
	require.Equal(t, []Snapshot{{Tick: 3}}, c.Last(1))
	require.Len(t, c.Last(10), 3)
}

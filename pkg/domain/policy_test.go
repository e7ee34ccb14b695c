package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/domain"
)

func TestActionFor(t *testing.T) {
	t.Parallel()

	broadcast := domain.Uniform(domain.Levers{Fine: 1.5, Incentive: -0.2, IEC: 0.3})
	for i := range 7 {
		require.Equal(t, domain.Levers{Fine: 1, Incentive: 0, IEC: 0.3}, broadcast.For(i))
	}

	per := domain.Action{{Fine: 0.1}, {Fine: 0.2}}
	require.InDelta(t, 0.2, per.For(1).Fine, 1e-12)
	require.Equal(t, domain.Levers{}, per.For(5))
	require.Equal(t, domain.Levers{}, domain.Action{}.For(0))
}

func TestActionCost(t *testing.T) {
	t.Parallel()

	a := domain.Uniform(domain.Levers{Fine: 0.3, Incentive: 0.6, IEC: 0.9})
	require.InDelta(t, 0.6, a.Cost(3), 1e-12)
	require.Zero(t, a.Cost(0))
}

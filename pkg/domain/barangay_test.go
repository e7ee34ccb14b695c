package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/domain"
)

func TestDefaultProfiles(t *testing.T) {
	t.Parallel()

	profiles := domain.DefaultProfiles()
	require.Len(t, profiles, 7)

	var urban int
	for i, p := range profiles {
		require.NoError(t, p.Validate())
		require.Equal(t, i+1, p.ID)
		if p.Urban {
			urban++
			require.Greater(t, p.Behavior.EffortCost, domain.DefaultBehavior().EffortCost)
		}
	}
	require.Equal(t, 1, urban)
}

func TestBarangayProfile_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *domain.BarangayProfile)
	}{
		{"zero id", func(p *domain.BarangayProfile) { p.ID = 0 }},
		{"no name", func(p *domain.BarangayProfile) { p.Name = "" }},
		{"no households", func(p *domain.BarangayProfile) { p.Households = 0 }},
		{"negative officials", func(p *domain.BarangayProfile) { p.Officials = -1 }},
		{"empty grid", func(p *domain.BarangayProfile) { p.Width = 0 }},
		{"compliance above one", func(p *domain.BarangayProfile) { p.InitialCompliance = 1.2 }},
		{"negative income share", func(p *domain.BarangayProfile) { p.IncomeMix[1] = -0.1 }},
		{"empty income mix", func(p *domain.BarangayProfile) { p.IncomeMix = [3]float64{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := domain.DefaultProfiles()[2]
			tt.mutate(&p)
			require.Error(t, p.Validate())
		})
	}
}

func TestSelectProfiles(t *testing.T) {
	t.Parallel()

	all := domain.DefaultProfiles()

	got, _, ok := domain.SelectProfiles(all, nil)
	require.True(t, ok)
	require.Len(t, got, 7)

	got, _, ok = domain.SelectProfiles(all, []int{5, 1})
	require.True(t, ok)
	require.Equal(t, []string{all[4].Name, all[0].Name}, []string{got[0].Name, got[1].Name})

	_, missing, ok := domain.SelectProfiles(all, []int{1, 42})
	require.False(t, ok)
	require.Equal(t, 42, missing)
}

func TestIncomeLevel_Gamma(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1.5, domain.IncomeLow.Gamma())
	require.Equal(t, 1.2, domain.IncomeMid.Gamma())
	require.Equal(t, 1.0, domain.IncomeHigh.Gamma())
}

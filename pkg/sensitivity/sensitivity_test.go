package sensitivity_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/sensitivity"
)

func TestSample(t *testing.T) {
	params := sensitivity.DefaultParameters()
	d := sensitivity.Sample(params, 16, 7)

	n, k := d.A.Dims()
	require.Equal(t, 16, n)
	require.Equal(t, 3, k)
	require.Len(t, d.AB, 3)

	for r := range n {
		for j, p := range params {
			require.GreaterOrEqual(t, d.A.At(r, j), p.Min)
			require.LessOrEqual(t, d.A.At(r, j), p.Max)
			require.GreaterOrEqual(t, d.B.At(r, j), p.Min)
			require.LessOrEqual(t, d.B.At(r, j), p.Max)
		}
		for i, ab := range d.AB {
			for j := range k {
				want := d.A.At(r, j)
				if i == j {
					want = d.B.At(r, j)
				}
				require.Equal(t, want, ab.At(r, j))
			}
		}
	}

	require.Len(t, d.Rows(), 16*5)
	require.Equal(t, sensitivity.Sample(params, 16, 7).Rows(), d.Rows())
}

func TestEstimate_Additive(t *testing.T) {
	params := []sensitivity.Parameter{
		{Name: "x1", Min: 0, Max: 1},
		{Name: "x2", Min: 0, Max: 1},
		{Name: "x3", Min: 0, Max: 1},
	}
	const n = 512
	d := sensitivity.Sample(params, n, 1)

	// y depends on x1 only.
	rows := d.Rows()
	y := make([]float64, len(rows))
	for i, row := range rows {
		y[i] = row[0]
	}

	idx := sensitivity.Estimate(y, n, 3, 50, rand.New(rand.NewPCG(1, 1)))
	require.Len(t, idx, 3)
	require.InDelta(t, 1, idx[0].S1, 0.2)
	require.InDelta(t, 1, idx[0].ST, 0.2)
	require.Greater(t, idx[0].S1Conf, 0.0)
	for _, i := range idx[1:] {
		require.Zero(t, i.S1)
		require.Zero(t, i.ST)
	}
}

func TestEstimate_Constant(t *testing.T) {
	y := make([]float64, 4*5)
	for i := range y {
		y[i] = 0.3
	}

	idx := sensitivity.Estimate(y, 4, 3, 10, rand.New(rand.NewPCG(1, 1)))
	for _, i := range idx {
		require.Equal(t, sensitivity.Indices{}, i)
	}
}

func smallOptions(t *testing.T) sensitivity.Options {
	t.Helper()

	profiles, _, ok := domain.SelectProfiles(domain.DefaultProfiles(), []int{6})
	require.True(t, ok)

	opts := sensitivity.DefaultOptions()
	opts.Profiles = profiles
	opts.Samples = 4
	opts.Ticks = 15
	opts.Window = 5
	opts.Resamples = 10
	opts.Parallelism = 2

	return opts
}

func TestAnalyze(t *testing.T) {
	opts := smallOptions(t)

	var seen []int
	res, err := sensitivity.Analyze(context.Background(), opts, func(done, total int) {
		seen = append(seen, done*100+total)
	})
	require.NoError(t, err)
	require.Len(t, seen, 4*5)
	for i, v := range seen {
		require.Equal(t, (i+1)*100+20, v)
	}
	require.Len(t, res.Outputs, 4*5)
	require.Len(t, res.Indices, 3)
	for _, y := range res.Outputs {
		require.GreaterOrEqual(t, y, 0.0)
		require.LessOrEqual(t, y, 1.0)
	}

	again, err := sensitivity.Analyze(context.Background(), opts, nil)
	require.NoError(t, err)
	require.Equal(t, res.Outputs, again.Outputs)

	sum := res.Summary()
	require.Equal(t, 4, sum.Samples)
	require.Equal(t, 20, sum.Evaluations)
	require.Len(t, sum.Indices, 3)
	for i := 1; i < len(sum.Indices); i++ {
		require.GreaterOrEqual(t, sum.Indices[i-1].ST, sum.Indices[i].ST)
	}
}

func TestAnalyze_Invalid(t *testing.T) {
	opts := smallOptions(t)
	opts.Parameters = nil
	_, err := sensitivity.Analyze(context.Background(), opts, nil)
	require.Error(t, err)

	opts = smallOptions(t)
	opts.Samples = 1
	_, err = sensitivity.Analyze(context.Background(), opts, nil)
	require.Error(t, err)
}

func TestAnalyze_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sensitivity.Analyze(ctx, smallOptions(t), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestOutput_Parameters(t *testing.T) {
	opts := smallOptions(t)
	opts.Ticks = 40

	low := sensitivity.Output(opts, []float64{0.5, 5, 0.2})
	high := sensitivity.Output(opts, []float64{0.5, 0.1, 0.8})
	require.Greater(t, high, low)
}

package sensitivity

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

// z975 is the two-sided 95% standard normal quantile.
const z975 = 1.959963984540054

// Indices are the first-order and total Sobol indices of one parameter with
// their 95% bootstrap confidence half-widths.
type Indices struct {
	S1, S1Conf float64
	ST, STConf float64
}

// Estimate computes Sobol indices from model outputs laid out as Design.Rows:
// n outputs for A, n for B, then n for every AB_i. First-order indices use the
// Saltelli (2010) estimator and total indices the Jansen estimator.
func Estimate(y []float64, n, k, resamples int, rng *rand.Rand) []Indices {
	ya, yb := y[:n], y[n:2*n]

	out := make([]Indices, k)
	for i := range k {
		yab := y[(2+i)*n : (3+i)*n]
		out[i].S1, out[i].ST = indices(ya, yb, yab, nil)

		if resamples <= 1 {
			continue
		}
		s1s := make([]float64, resamples)
		sts := make([]float64, resamples)
		idx := make([]int, n)
		for r := range resamples {
			for j := range idx {
				idx[j] = rng.IntN(n)
			}
			s1s[r], sts[r] = indices(ya, yb, yab, idx)
		}
		out[i].S1Conf = z975 * stat.StdDev(s1s, nil)
		out[i].STConf = z975 * stat.StdDev(sts, nil)
	}

	return out
}

// indices evaluates both estimators over the rows in idx, or all rows when
// idx is nil.
func indices(ya, yb, yab []float64, idx []int) (float64, float64) {
	n := len(ya)
	if idx != nil {
		n = len(idx)
	}
	row := func(j int) int {
		if idx == nil {
			return j
		}

		return idx[j]
	}

	all := make([]float64, 0, 2*n)
	var first, total float64
	for j := range n {
		r := row(j)
		all = append(all, ya[r], yb[r])
		first += yb[r] * (yab[r] - ya[r])
		d := ya[r] - yab[r]
		total += d * d
	}
	first /= float64(n)
	total /= 2 * float64(n)

	_, std := stat.PopMeanStdDev(all, nil)
	v := std * std
	if v == 0 {
		return 0, 0
	}

	return first / v, total / v
}

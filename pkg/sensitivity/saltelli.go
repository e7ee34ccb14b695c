package sensitivity

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"
)

// Design holds the Saltelli sample matrices. A and B are independent n x k
// samples; AB[i] is A with column i taken from B.
type Design struct {
	A, B *mat.Dense
	AB   []*mat.Dense
}

// Rows flattens the design into the parameter vectors to evaluate, in the
// order A, B, AB[0], ..., AB[k-1].
func (d Design) Rows() [][]float64 {
	n, k := d.A.Dims()
	out := make([][]float64, 0, n*(k+2))
	for _, m := range append([]*mat.Dense{d.A, d.B}, d.AB...) {
		for r := range n {
			out = append(out, mat.Row(nil, r, m))
		}
	}

	return out
}

// Sample draws a Saltelli design with n base samples over params using a
// scrambled Halton sequence of dimension 2k.
func Sample(params []Parameter, n int, seed uint64) Design {
	k := len(params)
	src := rand.NewPCG(seed, seed^0x5851f42d4c957f2d)

	unit := mat.NewDense(n, 2*k, nil)
	samplemv.Halton{
		Kind: samplemv.Owen,
		Q:    distmv.NewUnitUniform(2*k, src),
		Src:  src,
	}.Sample(unit)

	a := mat.NewDense(n, k, nil)
	b := mat.NewDense(n, k, nil)
	for r := range n {
		for j, p := range params {
			a.Set(r, j, p.scale(unit.At(r, j)))
			b.Set(r, j, p.scale(unit.At(r, k+j)))
		}
	}

	ab := make([]*mat.Dense, k)
	for i := range k {
		m := mat.DenseCopyOf(a)
		m.SetCol(i, mat.Col(nil, i, b))
		ab[i] = m
	}

	return Design{A: a, B: b, AB: ab}
}

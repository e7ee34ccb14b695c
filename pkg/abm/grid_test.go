package abm

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGridNeighborhoodIsBounded(t *testing.T) {
	t.Parallel()

	g := NewGrid(5, 5)

	require.Len(t, g.Neighborhood(Pos{0, 0}, 1, false), 3)
	require.Len(t, g.Neighborhood(Pos{0, 0}, 1, true), 4)
	require.Len(t, g.Neighborhood(Pos{2, 2}, 1, false), 8)
	require.Len(t, g.Neighborhood(Pos{2, 2}, 2, true), 25)
	require.Len(t, g.Neighborhood(Pos{4, 2}, 2, false), 14)
}

func TestGridPlaceMoveNeighbors(t *testing.T) {
	t.Parallel()

	g := NewGrid(4, 4)
	a := &Household{id: 1}
	b := &Household{id: 2}
	c := &Official{id: 3}

	g.Place(a, Pos{1, 1})
	g.Place(b, Pos{1, 1})
	g.Place(c, Pos{3, 3})

	require.Len(t, g.At(Pos{1, 1}), 2)
	require.Empty(t, g.Neighbors(Pos{1, 1}, 1, false))
	require.Len(t, g.Neighbors(Pos{1, 1}, 1, true), 2)

	g.Move(b, Pos{2, 2})
	require.Equal(t, Pos{2, 2}, b.Pos())
	require.Len(t, g.At(Pos{1, 1}), 1)
	require.Len(t, g.Neighbors(Pos{1, 1}, 1, false), 1)
	require.Len(t, g.Neighbors(Pos{2, 2}, 1, false), 2)
	require.Nil(t, g.At(Pos{9, 9}))
}

func TestGridRandomEmpty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	g := NewGrid(2, 1)
	g.Place(&Household{id: 1}, Pos{0, 0})

	for range 10 {
		require.Equal(t, Pos{1, 0}, g.RandomEmpty(rng))
	}

	g.Place(&Household{id: 2}, Pos{1, 0})
	require.Empty(t, g.Empties())
	p := g.RandomEmpty(rng)
	require.True(t, g.InBounds(p))
}

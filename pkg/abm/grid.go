package abm

import "math/rand/v2"

// Pos is a cell coordinate on the grid.
type Pos struct {
	X, Y int
}

// Agent is anything that can be placed on a Grid.
type Agent interface {
	ID() int
	Pos() Pos
	setPos(p Pos)
}

// Grid is a bounded multi-occupancy grid. Several agents may share a cell.
type Grid struct {
	width, height int
	cells         [][]Agent
}

// NewGrid creates an empty width x height grid. Non-positive sizes are raised to 1.
func NewGrid(width, height int) *Grid {
	width = max(width, 1)
	height = max(height, 1)

	return &Grid{
		width:  width,
		height: height,
		cells:  make([][]Agent, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Pos) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

func (g *Grid) index(p Pos) int { return p.Y*g.width + p.X }

// Place puts a onto cell p.
func (g *Grid) Place(a Agent, p Pos) {
	a.setPos(p)
	i := g.index(p)
	g.cells[i] = append(g.cells[i], a)
}

// Move relocates a from its current cell to p.
func (g *Grid) Move(a Agent, p Pos) {
	g.remove(a)
	g.Place(a, p)
}

func (g *Grid) remove(a Agent) {
	i := g.index(a.Pos())
	cell := g.cells[i]
	for j, other := range cell {
		if other.ID() == a.ID() {
			cell[j] = cell[len(cell)-1]
			g.cells[i] = cell[:len(cell)-1]

			return
		}
	}
}

// At returns the agents occupying p.
func (g *Grid) At(p Pos) []Agent {
	if !g.InBounds(p) {
		return nil
	}

	return g.cells[g.index(p)]
}

// Neighborhood returns the in-bounds cells of the Moore neighborhood of p
// with the given radius, in row-major order.
func (g *Grid) Neighborhood(p Pos, radius int, includeCenter bool) []Pos {
	out := make([]Pos, 0, (2*radius+1)*(2*radius+1))
	for y := p.Y - radius; y <= p.Y+radius; y++ {
		for x := p.X - radius; x <= p.X+radius; x++ {
			q := Pos{X: x, Y: y}
			if !g.InBounds(q) {
				continue
			}
			if q == p && !includeCenter {
				continue
			}
			out = append(out, q)
		}
	}

	return out
}

// Neighbors returns the agents in the Moore neighborhood of p.
func (g *Grid) Neighbors(p Pos, radius int, includeCenter bool) []Agent {
	var out []Agent
	for _, q := range g.Neighborhood(p, radius, includeCenter) {
		out = append(out, g.cells[g.index(q)]...)
	}

	return out
}

// Empties lists the unoccupied cells in row-major order.
func (g *Grid) Empties() []Pos {
	var out []Pos
	for i, cell := range g.cells {
		if len(cell) == 0 {
			out = append(out, Pos{X: i % g.width, Y: i / g.width})
		}
	}

	return out
}

// RandomEmpty picks a random unoccupied cell, or any cell when the grid is full.
func (g *Grid) RandomEmpty(rng *rand.Rand) Pos {
	empties := g.Empties()
	if len(empties) == 0 {
		return Pos{X: rng.IntN(g.width), Y: rng.IntN(g.height)}
	}

	return empties[rng.IntN(len(empties))]
}

func distance2(a, b Pos) int {
	dx, dy := a.X-b.X, a.Y-b.Y

	return dx*dx + dy*dy
}

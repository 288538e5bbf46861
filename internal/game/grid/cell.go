// Package grid provides cell geometry and a reference in-memory board
// implementing the movement and hazard collaborator contracts consumed by the
// combat core. Pathfinding is deliberately simple (uniform-cost BFS with
// 8-way adjacency); the core only depends on the contracts, not on this
// implementation.
package grid

// Cell is an integer grid position.
type Cell struct {
	X int
	Y int
}

// Chebyshev returns max(|dx|, |dy|) between c and o. Diagonal steps count as
// distance 1, which is the adjacency and reach metric used throughout combat.
func (c Cell) Chebyshev(o Cell) int {
	dx := abs(c.X - o.X)
	dy := abs(c.Y - o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether o is within melee reach of c (Chebyshev distance 1).
func (c Cell) Adjacent(o Cell) bool {
	return c.Chebyshev(o) == 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// neighborOffsets is the 8-way movement neighborhood.
var neighborOffsets = [8]Cell{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

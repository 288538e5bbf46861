package grid

// ReachableCells returns every empty walkable cell reachable from `from`
// within `budget` steps, using 8-way movement where each step (including
// diagonals) costs 1. The origin cell is not included.
//
// Occupied cells block both entry and transit.
//
// Postcondition: Every returned cell satisfies Chebyshev(from, cell) <= budget.
func (b *Board) ReachableCells(from Cell, budget int) []Cell {
	if budget <= 0 {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	visited := map[Cell]bool{from: true}
	frontier := []Cell{from}
	var reachable []Cell

	for step := 0; step < budget && len(frontier) > 0; step++ {
		var next []Cell
		for _, cur := range frontier {
			for _, off := range neighborOffsets {
				cand := Cell{X: cur.X + off.X, Y: cur.Y + off.Y}
				if visited[cand] || !b.IsValidPosition(cand.X, cand.Y) {
					continue
				}
				visited[cand] = true
				if b.blocked[cand] {
					continue
				}
				if _, occupied := b.occupants[cand]; occupied {
					continue
				}
				reachable = append(reachable, cand)
				next = append(next, cand)
			}
		}
		frontier = next
	}
	return reachable
}

// Path returns the shortest walk from `from` to `to` as an ordered list of
// cells excluding `from` and ending with `to`, or nil when no path exists.
// Occupied cells other than the destination block transit; the destination
// itself must be empty.
func (b *Board) Path(from, to Cell) []Cell {
	if from == to {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.IsValidPosition(to.X, to.Y) || b.blocked[to] {
		return nil
	}
	if _, occupied := b.occupants[to]; occupied {
		return nil
	}

	parent := map[Cell]Cell{from: from}
	frontier := []Cell{from}
	found := false

	for len(frontier) > 0 && !found {
		cur := frontier[0]
		frontier = frontier[1:]
		for _, off := range neighborOffsets {
			cand := Cell{X: cur.X + off.X, Y: cur.Y + off.Y}
			if _, seen := parent[cand]; seen {
				continue
			}
			if !b.IsValidPosition(cand.X, cand.Y) || b.blocked[cand] {
				continue
			}
			if _, occupied := b.occupants[cand]; occupied && cand != to {
				continue
			}
			parent[cand] = cur
			if cand == to {
				found = true
				break
			}
			frontier = append(frontier, cand)
		}
	}

	if !found {
		return nil
	}

	// Walk parents back from the destination, then reverse.
	var path []Cell
	for cur := to; cur != from; cur = parent[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

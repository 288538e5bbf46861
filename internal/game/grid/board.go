package grid

import (
	"fmt"
	"sync"
)

// Hazard is a persistent cell effect that damages occupants.
type Hazard struct {
	// Name identifies the hazard kind, e.g. "fire", "acid pool".
	Name string
	// Damage is applied to a unit ending its turn on the hazard cell.
	Damage int
	// RoundsLeft is the remaining duration in rounds; -1 means permanent.
	RoundsLeft int
}

// Info is a read-only snapshot of one board cell.
type Info struct {
	// Walkable is true when the cell is in bounds and not terrain-blocked.
	// It does not account for occupancy.
	Walkable bool
	// Occupant is the ID of the unit standing on the cell, or "" if empty.
	Occupant string
	// Hazard is the hazard on the cell, or nil.
	Hazard *Hazard
}

// Board is an in-memory rectangular grid tracking terrain, unit occupancy,
// and hazards. All methods are safe for concurrent use.
type Board struct {
	mu        sync.RWMutex
	width     int
	height    int
	blocked   map[Cell]bool
	occupants map[Cell]string
	positions map[string]Cell
	hazards   map[Cell]*Hazard
}

// NewBoard creates an empty board of the given dimensions.
//
// Precondition: width > 0 and height > 0.
func NewBoard(width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid: board dimensions must be positive, got %dx%d", width, height)
	}
	return &Board{
		width:     width,
		height:    height,
		blocked:   make(map[Cell]bool),
		occupants: make(map[Cell]string),
		positions: make(map[string]Cell),
		hazards:   make(map[Cell]*Hazard),
	}, nil
}

// IsValidPosition reports whether (x, y) lies inside the board bounds.
func (b *Board) IsValidPosition(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// SetBlocked marks cell as impassable terrain (or clears the mark).
func (b *Board) SetBlocked(cell Cell, blocked bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if blocked {
		b.blocked[cell] = true
	} else {
		delete(b.blocked, cell)
	}
}

// CellAt returns a snapshot of the cell at (x, y). The second return value is
// false when the position is out of bounds.
func (b *Board) CellAt(x, y int) (Info, bool) {
	if !b.IsValidPosition(x, y) {
		return Info{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	cell := Cell{X: x, Y: y}
	return Info{
		Walkable: !b.blocked[cell],
		Occupant: b.occupants[cell],
		Hazard:   b.hazards[cell],
	}, true
}

// Place puts the unit with id on cell, releasing any previous cell it held.
//
// Postcondition: Returns an error if cell is out of bounds, blocked, or
// occupied by a different unit; board state is unchanged on error.
func (b *Board) Place(id string, cell Cell) error {
	if id == "" {
		return fmt.Errorf("grid: Place requires a non-empty unit id")
	}
	if !b.IsValidPosition(cell.X, cell.Y) {
		return fmt.Errorf("grid: cell (%d,%d) is out of bounds", cell.X, cell.Y)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blocked[cell] {
		return fmt.Errorf("grid: cell (%d,%d) is blocked", cell.X, cell.Y)
	}
	if occ, ok := b.occupants[cell]; ok && occ != id {
		return fmt.Errorf("grid: cell (%d,%d) is occupied by %q", cell.X, cell.Y, occ)
	}
	if prev, ok := b.positions[id]; ok {
		delete(b.occupants, prev)
	}
	b.occupants[cell] = id
	b.positions[id] = cell
	return nil
}

// Remove releases the cell held by the unit with id. Unknown ids are a no-op.
func (b *Board) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cell, ok := b.positions[id]; ok {
		delete(b.occupants, cell)
		delete(b.positions, id)
	}
}

// PositionOf returns the cell held by the unit with id.
func (b *Board) PositionOf(id string) (Cell, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cell, ok := b.positions[id]
	return cell, ok
}

// AddHazard places a hazard on cell, replacing any existing one.
func (b *Board) AddHazard(cell Cell, hz Hazard) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hazards[cell] = &hz
}

// HazardAt returns the damage of the hazard on cell, or (0, false) when the
// cell is clear.
func (b *Board) HazardAt(cell Cell) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if hz, ok := b.hazards[cell]; ok {
		return hz.Damage, true
	}
	return 0, false
}

// TickRoundHazards decrements the remaining duration of every timed hazard by
// one round and removes expired hazards. Permanent hazards (RoundsLeft == -1)
// are unaffected.
//
// Postcondition: Returns the cells whose hazards expired this tick.
func (b *Board) TickRoundHazards() []Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	var expired []Cell
	for cell, hz := range b.hazards {
		if hz.RoundsLeft < 0 {
			continue
		}
		hz.RoundsLeft--
		if hz.RoundsLeft <= 0 {
			expired = append(expired, cell)
			delete(b.hazards, cell)
		}
	}
	return expired
}

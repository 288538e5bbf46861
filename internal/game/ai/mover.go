package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/torvik/gridfall/internal/game/combat"
	"github.com/torvik/gridfall/internal/game/grid"
)

// Mover performs the asynchronous move-to-cell operation for one unit. It
// returns when the unit has arrived or ctx is cancelled; on cancellation the
// unit stays wherever it got to.
type Mover interface {
	MoveTo(ctx context.Context, unit *combat.Combatant, path []grid.Cell) error
}

// Placer is the slice of the board a mover needs to keep occupancy in sync.
// grid.Board satisfies it.
type Placer interface {
	Place(id string, cell grid.Cell) error
}

// PacedMover walks a unit cell by cell with a fixed per-cell delay, standing
// in for the animation time a renderer would take.
type PacedMover struct {
	board   Placer
	perCell time.Duration
}

// NewPacedMover creates a PacedMover.
//
// Precondition: board must be non-nil; perCell must be >= 0.
func NewPacedMover(board Placer, perCell time.Duration) *PacedMover {
	return &PacedMover{board: board, perCell: perCell}
}

// MoveTo advances unit along path, waiting perCell between steps. Each step
// updates board occupancy and the unit's position before the next wait, so a
// cancelled move leaves a consistent partial position.
func (m *PacedMover) MoveTo(ctx context.Context, unit *combat.Combatant, path []grid.Cell) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}

	for _, cell := range path {
		timer.Reset(m.perCell)
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := m.board.Place(unit.ID, cell); err != nil {
			return fmt.Errorf("ai: move blocked at (%d,%d): %w", cell.X, cell.Y, err)
		}
		unit.Pos = cell
	}
	return nil
}

// InstantMover teleports the unit to the destination with no delay. Used by
// headless simulations and tests.
type InstantMover struct {
	board Placer
}

// NewInstantMover creates an InstantMover.
func NewInstantMover(board Placer) *InstantMover {
	return &InstantMover{board: board}
}

// MoveTo places the unit on the final path cell immediately.
func (m *InstantMover) MoveTo(ctx context.Context, unit *combat.Combatant, path []grid.Cell) error {
	if len(path) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dest := path[len(path)-1]
	if err := m.board.Place(unit.ID, dest); err != nil {
		return fmt.Errorf("ai: move blocked at (%d,%d): %w", dest.X, dest.Y, err)
	}
	unit.Pos = dest
	return nil
}

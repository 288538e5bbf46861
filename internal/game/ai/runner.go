package ai

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/torvik/gridfall/internal/game/combat"
	"github.com/torvik/gridfall/internal/game/faction"
	"github.com/torvik/gridfall/internal/game/grid"
)

// TurnEngine is the slice of the turn-order engine the AI needs.
// turn.Engine satisfies it.
type TurnEngine interface {
	IsUnitInCurrentWindow(unit *combat.Combatant) bool
	BeginUnitTurn(unit *combat.Combatant)
	EndTurn(unit *combat.Combatant)
	Units() []*combat.Combatant
	IsCombatOver() bool
}

// BoardView is the movement-service contract the runner consumes.
// grid.Board satisfies it.
type BoardView interface {
	ReachableCells(from grid.Cell, budget int) []grid.Cell
	Path(from, to grid.Cell) []grid.Cell
	HazardAt(cell grid.Cell) (int, bool)
}

// Runner executes the full turn lifecycle for one AI-controlled unit:
// thinking delay, validation, target/move/action selection, the asynchronous
// move, and turn-completion signalling.
type Runner struct {
	engine     TurnEngine
	executor   *combat.Executor
	factions   *faction.Resolver
	board      BoardView
	mover      Mover
	behaviors  map[string]Behavior
	thinkDelay time.Duration
	log        *zap.Logger
}

// NewRunner creates a Runner.
//
// Precondition: every argument except behaviors entries must be non-nil.
func NewRunner(engine TurnEngine, executor *combat.Executor, factions *faction.Resolver, board BoardView, mover Mover, behaviors map[string]Behavior, thinkDelay time.Duration, logger *zap.Logger) *Runner {
	return &Runner{
		engine:     engine,
		executor:   executor,
		factions:   factions,
		board:      board,
		mover:      mover,
		behaviors:  behaviors,
		thinkDelay: thinkDelay,
		log:        logger,
	}
}

// TakeTurn runs one unit's turn to completion and then signals the engine via
// EndTurn. Window membership is re-checked after every suspension point (the
// thinking delay and the move), because the window can legitimately change
// while the unit is deciding. A cancelled turn never calls EndTurn — on
// timeout the sequencer owns the forced end, so the late completion cannot
// end a turn twice.
func (r *Runner) TakeTurn(ctx context.Context, unit *combat.Combatant) {
	defer func() {
		if ctx.Err() != nil {
			r.log.Debug("AI turn cancelled", zap.String("unit", unit.Name))
			return
		}
		r.engine.EndTurn(unit)
	}()

	// Visual pacing delay; cancellable, never busy-waits.
	if r.thinkDelay > 0 {
		timer := time.NewTimer(r.thinkDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
	}

	if !unit.Alive() || !r.engine.IsUnitInCurrentWindow(unit) {
		return
	}

	r.engine.BeginUnitTurn(unit)
	if !unit.Alive() {
		// A turn-start status tick can kill the unit outright.
		return
	}
	if unit.Statuses.PreventsActions() {
		r.log.Debug("AI turn skipped: actions prevented by status",
			zap.String("unit", unit.Name))
		return
	}

	behavior, ok := r.behaviors[unit.Behavior]
	if !ok {
		r.log.Error("no behavior registered for unit, ending turn",
			zap.String("unit", unit.Name),
			zap.String("behavior", unit.Behavior))
		return
	}

	target := behavior.ChooseTarget(unit, r.engine.Units())
	if target == nil {
		r.log.Debug("AI found no valid target", zap.String("unit", unit.Name))
		return
	}

	if err := r.moveIfWanted(ctx, unit, target, behavior); err != nil {
		return
	}

	// Re-validate after the asynchronous move: the window may have changed
	// and the target may have died while we were walking.
	if ctx.Err() != nil || !unit.Alive() || !r.engine.IsUnitInCurrentWindow(unit) {
		return
	}

	switch behavior.ChooseAction(unit, target) {
	case ActionMeleeAttack, ActionRangedSkill:
		if !target.Alive() || !r.factions.IsHostile(unit.Faction, target.Faction) {
			return
		}
		if _, err := r.executor.Attack(unit, target, unit.Weapon); err != nil {
			r.log.Debug("AI attack failed validation", zap.Error(err))
		}
	case ActionSupport:
		if !target.Alive() || !r.factions.IsAlly(unit.Faction, target.Faction) {
			return
		}
		if _, err := r.executor.Support(unit, target); err != nil {
			r.log.Debug("AI support failed validation", zap.Error(err))
		}
	default:
		// Wait, or a pure repositioning turn.
	}
}

// moveIfWanted evaluates and performs the behavior's chosen move, spending
// movement points before the asynchronous walk begins.
func (r *Runner) moveIfWanted(ctx context.Context, unit, target *combat.Combatant, behavior Behavior) error {
	if unit.Statuses.PreventsMovement() || unit.MoveRemaining <= 0 {
		return nil
	}
	reachable := r.board.ReachableCells(unit.Pos, unit.MoveRemaining)
	dest, wants := behavior.EvaluateBestMove(unit, target, reachable)
	if !wants || dest == unit.Pos {
		return nil
	}
	path := r.board.Path(unit.Pos, dest)
	cost := len(path)
	if cost == 0 || cost > unit.MoveRemaining {
		return nil
	}
	unit.MoveRemaining -= cost
	if err := r.mover.MoveTo(ctx, unit, path); err != nil {
		r.log.Debug("AI move interrupted",
			zap.String("unit", unit.Name),
			zap.Error(err))
		return err
	}
	return nil
}

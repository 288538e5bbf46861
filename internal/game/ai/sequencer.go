package ai

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/torvik/gridfall/internal/game/combat"
)

// Sequencer drives the units of a non-player turn window strictly
// sequentially: unit N+1 does not begin deciding until unit N has signalled
// completion or been force-timed-out. It implements turn.WindowDriver.
type Sequencer struct {
	engine  TurnEngine
	runner  *Runner
	timeout time.Duration
	log     *zap.Logger

	root   context.Context
	cancel context.CancelFunc
}

// NewSequencer creates a Sequencer with the given per-unit completion bound.
//
// Precondition: engine, runner, and logger must be non-nil; timeout > 0.
func NewSequencer(engine TurnEngine, runner *Runner, timeout time.Duration, logger *zap.Logger) *Sequencer {
	root, cancel := context.WithCancel(context.Background())
	return &Sequencer{
		engine:  engine,
		runner:  runner,
		timeout: timeout,
		log:     logger,
		root:    root,
		cancel:  cancel,
	}
}

// RunWindow drives each unit of the window in order. A unit that does not
// signal completion within the timeout has its in-flight decision cancelled
// and its turn force-ended exactly once; the late completion is then a no-op
// because the unit is no longer in the window.
func (s *Sequencer) RunWindow(units []*combat.Combatant) {
	for _, unit := range units {
		if s.root.Err() != nil || s.engine.IsCombatOver() {
			return
		}
		if !unit.Alive() || !s.engine.IsUnitInCurrentWindow(unit) {
			// Became invalid before its go: automatic turn-end, not an error.
			continue
		}

		ctx, cancel := context.WithTimeout(s.root, s.timeout)
		done := make(chan struct{})
		go func(u *combat.Combatant) {
			defer close(done)
			s.runner.TakeTurn(ctx, u)
		}(unit)

		select {
		case <-done:
		case <-ctx.Done():
			s.log.Warn("AI turn exceeded bound, forcing end of turn",
				zap.String("unit", unit.Name),
				zap.Duration("timeout", s.timeout))
			s.engine.EndTurn(unit)
		}
		cancel()
	}
}

// Stop cancels any in-flight decision and prevents further windows from
// running. Safe to call multiple times; used at scene teardown.
func (s *Sequencer) Stop() {
	s.cancel()
}

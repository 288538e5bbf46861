// Package session wires one battle together: content loading, board and unit
// construction, the turn engine, the action executor, and the AI driver, with
// a Run loop that waits for the battle to end.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/torvik/gridfall/internal/config"
	"github.com/torvik/gridfall/internal/game/ai"
	"github.com/torvik/gridfall/internal/game/combat"
	"github.com/torvik/gridfall/internal/game/dice"
	"github.com/torvik/gridfall/internal/game/faction"
	"github.com/torvik/gridfall/internal/game/grid"
	"github.com/torvik/gridfall/internal/game/status"
	"github.com/torvik/gridfall/internal/game/turn"
	"github.com/torvik/gridfall/internal/scenario"
)

// Result is the final state of a completed battle.
type Result struct {
	// Victory is true when the player faction won.
	Victory bool
	// Rounds is the round counter when the battle ended.
	Rounds int
}

// Session is one fully wired battle. Create with New, drive with Run, tear
// down with Stop.
type Session struct {
	log       *zap.Logger
	engine    *turn.Engine
	seq       *ai.Sequencer
	board     *grid.Board
	units     []*combat.Combatant
	encounter turn.EncounterConfig

	mu      sync.Mutex
	ended   bool
	victory bool
	done    chan struct{}
}

// New builds a Session from configuration and a parsed scenario: it loads the
// status-effect and faction content, materialises the board and combatants,
// and wires the engine, executor, behaviors, runner, and sequencer together.
//
// Precondition: cfg must have passed Validate; sc and logger must be non-nil.
func New(cfg config.Config, sc *scenario.Scenario, logger *zap.Logger) (*Session, error) {
	effects, err := status.LoadDirectory(cfg.Content.EffectsDir)
	if err != nil {
		return nil, fmt.Errorf("session: loading status effects: %w", err)
	}
	factions, err := faction.LoadFile(cfg.Content.FactionsFile)
	if err != nil {
		return nil, fmt.Errorf("session: loading faction matrix: %w", err)
	}

	board, units, encounter, err := sc.Build(effects)
	if err != nil {
		return nil, fmt.Errorf("session: building scenario: %w", err)
	}

	var source dice.Source
	if cfg.Simulation.Seed != 0 {
		source = dice.NewSeededSource(cfg.Simulation.Seed)
		logger.Info("using seeded dice source", zap.Int64("seed", cfg.Simulation.Seed))
	} else {
		source = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(source, logger)

	engine := turn.NewEngine(logger, factions, board)
	executor := combat.NewExecutor(roller, tuningFrom(cfg.Combat), logger, engine)

	tun := tunablesFrom(cfg.AI)
	behaviors := make(map[string]ai.Behavior)
	for _, kind := range []ai.Kind{ai.Berserker, ai.Support, ai.Coward, ai.Protector} {
		behaviors[kind.String()] = ai.New(kind, factions, board, source, tun)
	}

	var mover ai.Mover
	if cfg.AI.MoveCellDelay > 0 {
		mover = ai.NewPacedMover(board, cfg.AI.MoveCellDelay)
	} else {
		mover = ai.NewInstantMover(board)
	}

	runner := ai.NewRunner(engine, executor, factions, board, mover, behaviors, cfg.AI.ThinkDelay, logger)
	seq := ai.NewSequencer(engine, runner, cfg.AI.TurnTimeout, logger)
	engine.SetDriver(seq)

	s := &Session{
		log:       logger,
		engine:    engine,
		seq:       seq,
		board:     board,
		units:     units,
		encounter: encounter,
		done:      make(chan struct{}),
	}
	engine.Notifier().Subscribe(s.onEvent)
	return s, nil
}

// Engine exposes the turn engine for action requests and observation.
func (s *Session) Engine() *turn.Engine { return s.engine }

// Board exposes the battle board.
func (s *Session) Board() *grid.Board { return s.board }

// Units returns the combatants in scenario order.
func (s *Session) Units() []*combat.Combatant { return s.units }

// Run starts the battle and blocks until it ends or ctx is cancelled.
//
// Postcondition: On a finished battle, returns the outcome and a nil error; on
// cancellation, returns ctx's error with a zero Result.
func (s *Session) Run(ctx context.Context) (Result, error) {
	s.engine.Initialize(s.units, s.encounter)

	select {
	case <-s.done:
		s.mu.Lock()
		victory := s.victory
		s.mu.Unlock()
		return Result{Victory: victory, Rounds: s.engine.Round()}, nil
	case <-ctx.Done():
		s.Stop()
		return Result{}, ctx.Err()
	}
}

// Stop cancels any in-flight AI turn and releases the session. Safe to call
// multiple times.
func (s *Session) Stop() {
	s.seq.Stop()
}

// onEvent watches for the end of the battle. It must not call back into the
// engine, so it only records the outcome and closes the done channel.
func (s *Session) onEvent(ev turn.Event) {
	end, ok := ev.(turn.CombatEnded)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.victory = end.Victory
	close(s.done)
}

// tuningFrom maps the combat configuration onto resolver tuning.
func tuningFrom(c config.CombatConfig) combat.Tuning {
	return combat.Tuning{
		BaseHit:          c.BaseHit,
		FinesseHitFactor: c.FinesseHitFactor,
		HitFloor:         c.HitFloor,
		HitCeiling:       c.HitCeiling,

		BaseParry:          c.BaseParry,
		FinesseParryFactor: c.FinesseParryFactor,
		ParryCeiling:       c.ParryCeiling,

		BaseCrit:       c.BaseCrit,
		LuckCritFactor: c.LuckCritFactor,
		CritCeiling:    c.CritCeiling,

		BaseCritDefense:        c.BaseCritDefense,
		FocusCritDefenseFactor: c.FocusCritDefenseFactor,
		CritDefenseCeiling:     c.CritDefenseCeiling,

		CritMultiplier: c.CritMultiplier,
		MinDamage:      c.MinDamage,
	}
}

// tunablesFrom maps the AI configuration onto behavior scoring weights.
func tunablesFrom(a config.AIConfig) ai.Tunables {
	return ai.Tunables{
		WeightLowHP:       a.WeightLowHP,
		WeightCloser:      a.WeightCloser,
		HazardAvoidance:   a.HazardAvoidance,
		SupportPreference: a.SupportPreference,
		HealThreshold:     a.HealThreshold,
	}
}

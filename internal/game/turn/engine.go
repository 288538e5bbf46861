package turn

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/torvik/gridfall/internal/game/combat"
)

// State is the engine's lifecycle phase.
type State int

const (
	NotStarted State = iota
	WindowActive
	CombatOver
)

// WindowDriver drives the units of a non-player window sequentially, ending
// each unit's turn when its decision completes or times out. The AI sequencer
// implements it. RunWindow is invoked on a fresh goroutine per window.
type WindowDriver interface {
	RunWindow(units []*combat.Combatant)
}

// Engine owns combat's temporal state machine: the initiative order, the
// current turn window, round advancement, hazard ticking, and victory
// evaluation. All exported methods are safe for concurrent use.
//
// Invariant: the cursor always indexes the head of the current window while
// WindowActive; after any removal or insertion it is adjusted so it still
// denotes the next unit to act.
type Engine struct {
	mu       sync.Mutex
	log      *zap.Logger
	notifier *Notifier
	hostile  RelationshipResolver
	hazards  HazardService
	driver   WindowDriver

	cfg    EncounterConfig
	state  State
	order  []*combat.Combatant
	cursor int
	round  int
	window []*combat.Combatant

	// lastHazardRound guards the once-per-round hazard tick: a round is only
	// ticked the first time it is reached.
	lastHazardRound int
	// ticked maps unit ID to the round its status effects last ticked, making
	// turn-start ticking idempotent per (unit, round).
	ticked map[string]int
	// actedRound maps unit ID to the round in which it last completed a turn.
	// A living unit is due this round until its entry equals the current round;
	// the round wraps when no unit is due. This survives the round-robin
	// re-queue, which rotates the order without moving the cursor.
	actedRound map[string]int

	over       bool
	victory    bool
	stubWarned bool
}

// RelationshipResolver is the slice of the faction resolver the engine needs
// for victory checks.
type RelationshipResolver interface {
	IsHostile(a, b string) bool
}

// NewEngine creates an Engine in the NotStarted state.
//
// Precondition: logger and resolver must be non-nil. hazards may be nil when
// the battle has no board hazards.
func NewEngine(logger *zap.Logger, resolver RelationshipResolver, hazards HazardService) *Engine {
	if hazards == nil {
		hazards = noHazards{}
	}
	return &Engine{
		log:        logger,
		notifier:   NewNotifier(),
		hostile:    resolver,
		hazards:    hazards,
		ticked:     make(map[string]int),
		actedRound: make(map[string]int),
	}
}

// Notifier returns the engine's event notifier for observer subscription.
func (e *Engine) Notifier() *Notifier { return e.notifier }

// SetDriver attaches the non-player window driver. Must be called before
// Initialize; a nil driver leaves AI windows waiting for external EndTurn
// calls, which the tests rely on.
func (e *Engine) SetDriver(d WindowDriver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driver = d
}

// Initialize clears all state, sorts units by speed descending (ties: player
// faction first, otherwise input order), and activates the first turn window.
// If that window's faction is non-player, the window driver is dispatched.
//
// An empty unit list logs a warning and leaves the engine NotStarted.
func (e *Engine) Initialize(units []*combat.Combatant, cfg EncounterConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(units) == 0 {
		e.log.Warn("combat initialization skipped: no units")
		return
	}

	e.cfg = cfg
	e.order = make([]*combat.Combatant, len(units))
	copy(e.order, units)
	e.sortOrderLocked()
	e.cursor = 0
	e.round = 1
	e.lastHazardRound = 1
	e.ticked = make(map[string]int)
	e.actedRound = make(map[string]int)
	e.over = false
	e.victory = false
	e.stubWarned = false
	e.state = WindowActive

	e.log.Info("combat initialized",
		zap.Int("units", len(e.order)),
		zap.String("victory", cfg.Victory.String()),
		zap.String("player_faction", cfg.PlayerFaction),
	)
	e.notifier.Publish(RoundStarted{Round: e.round})
	e.activateWindowLocked()
}

// sortOrderLocked stable-sorts the order by speed descending, with the player
// faction winning ties. Deterministic for a fixed input list.
func (e *Engine) sortOrderLocked() {
	player := e.cfg.PlayerFaction
	sort.SliceStable(e.order, func(i, j int) bool {
		a, b := e.order[i], e.order[j]
		if a.Stats.Speed != b.Stats.Speed {
			return a.Stats.Speed > b.Stats.Speed
		}
		return a.Faction == player && b.Faction != player
	})
}

// RegisterUnit appends a unit created after initialization. While combat is
// running the order is stable re-sorted with the same tie-break, and an empty
// current window is recomputed. Duplicate registration is a warning no-op.
func (e *Engine) RegisterUnit(unit *combat.Combatant) {
	if unit == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, u := range e.order {
		if u.ID == unit.ID {
			e.log.Warn("duplicate unit registration ignored", zap.String("unit", unit.Name))
			return
		}
	}
	e.order = append(e.order, unit)
	if e.state != WindowActive {
		return
	}

	e.sortOrderLocked()
	if len(e.window) > 0 {
		// Keep the cursor on the current window head after the re-sort.
		e.cursor = e.indexOfLocked(e.window[0])
		return
	}
	e.advanceToNextWindowLocked()
}

// UnregisterUnit removes a unit from the order entirely (e.g. it left the
// scene). The cursor is adjusted so it still points at the correct next unit,
// and the current window is recomputed if the removal emptied it.
func (e *Engine) UnregisterUnit(unit *combat.Combatant) {
	if unit == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOfLocked(unit)
	if idx < 0 {
		e.log.Warn("unregister ignored: unit not in order", zap.String("unit", unit.Name))
		return
	}
	e.order = append(e.order[:idx], e.order[idx+1:]...)
	if idx < e.cursor {
		e.cursor--
	}
	e.window = removeUnit(e.window, unit)
	delete(e.ticked, unit.ID)
	delete(e.actedRound, unit.ID)

	if e.state == WindowActive && len(e.window) == 0 {
		e.advanceToNextWindowLocked()
	}
}

// EndTurn completes unit's turn: it validates window membership, ensures the
// turn-start status tick ran, applies any hazard on the unit's cell, re-queues
// the unit at the end of the order, and either shrinks the window or advances
// to the next one.
//
// Units outside the current window are rejected with a warning, which also
// makes a late forced-timeout double call harmless.
func (e *Engine) EndTurn(unit *combat.Combatant) {
	if unit == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != WindowActive {
		e.log.Warn("end turn ignored: combat not active", zap.String("unit", unit.Name))
		return
	}
	if !e.inWindowLocked(unit) {
		e.log.Warn("end turn ignored: unit not in current window", zap.String("unit", unit.Name))
		return
	}

	e.beginUnitTurnLocked(unit)
	e.applyHazardLocked(unit)
	e.actedRound[unit.ID] = e.round

	// Round-robin re-queue: acting removes you from "due now" and re-queues
	// you after everyone else.
	idx := e.indexOfLocked(unit)
	if idx >= 0 {
		e.order = append(e.order[:idx], e.order[idx+1:]...)
		e.order = append(e.order, unit)
		if idx < e.cursor {
			e.cursor--
		}
	}
	e.window = removeUnit(e.window, unit)

	if e.evaluateVictoryLocked() {
		return
	}
	if len(e.window) == 0 {
		e.advanceToNextWindowLocked()
		return
	}

	// Re-announce the shrunk window. Windows are single-faction, so an AI
	// window is already being driven by the sequencer; no re-dispatch here.
	head := e.window[0]
	e.cursor = e.indexOfLocked(head)
	e.notifier.Publish(WindowChanged{Faction: head.Faction, Units: snapshot(e.window)})
	e.notifier.Publish(CurrentUnitChanged{Unit: head})
}

// BeginUnitTurn runs unit's turn-start bookkeeping (status-effect tick,
// movement reset). Idempotent per (unit, round); the AI runner calls it at
// decision start and EndTurn calls it defensively so a unit that merely
// passes still ticks exactly once.
func (e *Engine) BeginUnitTurn(unit *combat.Combatant) {
	if unit == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != WindowActive || !e.inWindowLocked(unit) {
		return
	}
	e.beginUnitTurnLocked(unit)
}

func (e *Engine) beginUnitTurnLocked(unit *combat.Combatant) {
	if e.ticked[unit.ID] == e.round {
		return
	}
	e.ticked[unit.ID] = e.round

	unit.ResetTurn()
	oldHP := unit.HP
	results := unit.Statuses.OnTurnStart(unit)
	for _, r := range results {
		if r.Expired {
			e.log.Debug("status effect expired",
				zap.String("unit", unit.Name),
				zap.String("effect", r.EffectID))
		}
	}
	if unit.HP != oldHP {
		e.notifier.Publish(HPChanged{Unit: unit, OldHP: oldHP, NewHP: unit.HP})
	}
	if oldHP > 0 && !unit.Alive() {
		e.notifier.Publish(UnitDied{Unit: unit})
		e.window = removeUnit(e.window, unit)
		e.evaluateVictoryLocked()
	}
}

// applyHazardLocked damages unit for any hazard on its current cell. Hazard
// damage applies uniformly to player and non-player units.
func (e *Engine) applyHazardLocked(unit *combat.Combatant) {
	dmg, ok := e.hazards.HazardAt(unit.Pos)
	if !ok || dmg <= 0 || !unit.Alive() {
		return
	}
	oldHP := unit.HP
	newHP := unit.ApplyDamage(dmg)
	e.log.Debug("hazard damage applied",
		zap.String("unit", unit.Name),
		zap.Int("damage", dmg),
		zap.Int("hp", newHP))
	e.notifier.Publish(HPChanged{Unit: unit, OldHP: oldHP, NewHP: newHP})
	if newHP == 0 {
		e.notifier.Publish(UnitDied{Unit: unit})
		e.window = removeUnit(e.window, unit)
	}
}

// advanceToNextWindowLocked moves the cursor to the next due unit, wrapping
// and incrementing the round when every living unit has completed a turn. On
// a round increment hazards tick exactly once, the round-start notification
// fires, and victory is re-evaluated. Dead units are never due, so they are
// skipped implicitly.
func (e *Engine) advanceToNextWindowLocked() {
	if e.state != WindowActive {
		return
	}
	if !e.anyAliveLocked() {
		e.evaluateVictoryLocked()
		return
	}

	for {
		idx := e.nextDueLocked()
		if idx >= 0 {
			e.cursor = idx
			break
		}
		e.cursor = 0
		e.round++
		if e.round > e.lastHazardRound {
			e.lastHazardRound = e.round
			e.hazards.TickRoundHazards()
		}
		e.notifier.Publish(RoundStarted{Round: e.round})
		if e.evaluateVictoryLocked() {
			return
		}
	}

	e.activateWindowLocked()
}

// nextDueLocked returns the index of the first living unit that has not
// completed a turn this round, or -1 when the round is exhausted. The
// round-robin re-queue keeps due units ahead of acted ones, so a front scan
// preserves initiative order.
func (e *Engine) nextDueLocked() int {
	for i, u := range e.order {
		if u.Alive() && e.actedRound[u.ID] != e.round {
			return i
		}
	}
	return -1
}

// activateWindowLocked builds the window of consecutive living same-faction
// units starting at the cursor, excluding units that already completed a turn
// this round, and hands control to the AI driver when the window's faction is
// non-player.
func (e *Engine) activateWindowLocked() {
	head := e.order[e.cursor]
	window := []*combat.Combatant{}
	for i := e.cursor; i < len(e.order); i++ {
		u := e.order[i]
		if !u.Alive() || u.Faction != head.Faction || e.actedRound[u.ID] == e.round {
			break
		}
		window = append(window, u)
	}
	e.window = window

	if e.evaluateVictoryLocked() {
		return
	}

	e.notifier.Publish(WindowChanged{Faction: head.Faction, Units: snapshot(window)})
	e.notifier.Publish(CurrentUnitChanged{Unit: head})

	aiDriven := head.Faction != e.cfg.PlayerFaction || e.cfg.AutopilotPlayer
	if aiDriven && e.driver != nil {
		units := snapshot(window)
		go e.driver.RunWindow(units)
	}
}

// UnitDamaged implements combat.EventSink.
func (e *Engine) UnitDamaged(unit *combat.Combatant, oldHP, newHP int) {
	e.notifier.Publish(HPChanged{Unit: unit, OldHP: oldHP, NewHP: newHP})
}

// UnitHealed implements combat.EventSink.
func (e *Engine) UnitHealed(unit *combat.Combatant, oldHP, newHP int) {
	e.notifier.Publish(HPChanged{Unit: unit, OldHP: oldHP, NewHP: newHP})
}

// UnitDied implements combat.EventSink: it prunes the dead unit from the
// current window, re-evaluates victory, and advances when the death emptied
// the window.
func (e *Engine) UnitDied(unit *combat.Combatant) {
	e.notifier.Publish(UnitDied{Unit: unit})
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != WindowActive {
		return
	}
	e.window = removeUnit(e.window, unit)
	if e.evaluateVictoryLocked() {
		return
	}
	if len(e.window) == 0 {
		e.advanceToNextWindowLocked()
	}
}

// IsUnitInCurrentWindow reports whether unit may act right now.
func (e *Engine) IsUnitInCurrentWindow(unit *combat.Combatant) bool {
	if unit == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == WindowActive && e.inWindowLocked(unit)
}

// CurrentWindow returns a snapshot of the current turn window.
func (e *Engine) CurrentWindow() []*combat.Combatant {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.window)
}

// Units returns a snapshot of the full initiative order.
func (e *Engine) Units() []*combat.Combatant {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.order)
}

// Round returns the current round number.
func (e *Engine) Round() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round
}

// IsCombatOver evaluates the victory condition and reports whether the battle
// has ended. Repeated calls after the battle is over are idempotent: the
// combat-ended notification fires exactly once.
func (e *Engine) IsCombatOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluateVictoryLocked()
}

// Outcome returns (over, playerVictory).
func (e *Engine) Outcome() (bool, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.over, e.victory
}

func (e *Engine) inWindowLocked(unit *combat.Combatant) bool {
	for _, u := range e.window {
		if u == unit {
			return true
		}
	}
	return false
}

func (e *Engine) indexOfLocked(unit *combat.Combatant) int {
	for i, u := range e.order {
		if u == unit {
			return i
		}
	}
	return -1
}

func (e *Engine) anyAliveLocked() bool {
	for _, u := range e.order {
		if u.Alive() {
			return true
		}
	}
	return false
}

func removeUnit(units []*combat.Combatant, unit *combat.Combatant) []*combat.Combatant {
	for i, u := range units {
		if u == unit {
			return append(units[:i], units[i+1:]...)
		}
	}
	return units
}

func snapshot(units []*combat.Combatant) []*combat.Combatant {
	out := make([]*combat.Combatant, len(units))
	copy(out, units)
	return out
}

// Package turn implements the combat turn-order state machine: windowed
// initiative, round advancement, hazard ticking, victory evaluation, and the
// event notifier that fans battle happenings out to observers.
package turn

import (
	"sync"

	"github.com/torvik/gridfall/internal/game/combat"
)

// Event is a typed battle notification. The concrete types below are the
// only implementations.
type Event interface {
	isEvent()
}

// RoundStarted is raised when the round counter advances (and once for the
// opening round).
type RoundStarted struct {
	Round int
}

// WindowChanged is raised whenever the current turn window is computed or
// shrinks. Units is a snapshot; observers must not mutate the combatants.
type WindowChanged struct {
	Faction string
	Units   []*combat.Combatant
}

// CurrentUnitChanged is raised when the head of the current window changes.
type CurrentUnitChanged struct {
	Unit *combat.Combatant
}

// HPChanged is raised after any HP mutation: attack damage, healing, status
// ticks, or hazard damage.
type HPChanged struct {
	Unit  *combat.Combatant
	OldHP int
	NewHP int
}

// UnitDied is raised once when a unit's HP reaches zero.
type UnitDied struct {
	Unit *combat.Combatant
}

// CombatEnded is raised exactly once per battle.
type CombatEnded struct {
	Victory bool
}

func (RoundStarted) isEvent()       {}
func (WindowChanged) isEvent()      {}
func (CurrentUnitChanged) isEvent() {}
func (HPChanged) isEvent()          {}
func (UnitDied) isEvent()           {}
func (CombatEnded) isEvent()        {}

// Listener receives events synchronously. Listeners must be fast and must not
// call back into the Engine from the callback; hand off to a goroutine or
// channel instead.
type Listener func(Event)

// Notifier is an explicit observer list with typed payloads. It is owned by
// one Engine, so its lifetime matches the battle session and stale
// subscriptions cannot leak across battles. Safe for concurrent use.
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers l for all future events.
//
// Precondition: l must not be nil.
func (n *Notifier) Subscribe(l Listener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// Publish delivers ev to every listener in subscription order.
func (n *Notifier) Publish(ev Event) {
	n.mu.RLock()
	snapshot := make([]Listener, len(n.listeners))
	copy(snapshot, n.listeners)
	n.mu.RUnlock()
	for _, l := range snapshot {
		l(ev)
	}
}

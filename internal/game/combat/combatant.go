// Package combat implements the combatant data model, the stochastic attack
// resolver, and the shared action executors for Gridfall battles.
package combat

import (
	"github.com/google/uuid"

	"github.com/torvik/gridfall/internal/game/grid"
	"github.com/torvik/gridfall/internal/game/proficiency"
	"github.com/torvik/gridfall/internal/game/status"
)

// Stats holds a combatant's vital combat attributes.
type Stats struct {
	MaxHP   int
	Attack  int
	Defense int
	Speed   int
	Luck    int
	Finesse int
	Focus   int
}

// Combatant represents one participant in a battle.
//
// Invariant: 0 <= HP <= Stats.MaxHP. A combatant with HP == 0 is not alive
// and is excluded from targeting, turn windows, and victory counts, but stays
// in the turn order until its window is explicitly ended.
type Combatant struct {
	// ID is the stable identity of this combatant for the whole battle.
	ID string
	// Name is the display name used in logs.
	Name string
	// Faction is the faction tag consumed by the relationship resolver.
	Faction string
	// Behavior names the AI behavior driving this unit; empty for
	// player-controlled units.
	Behavior string

	Stats Stats
	// HP is the current hit points.
	HP int

	// Pos is the combatant's grid position.
	Pos grid.Cell
	// MoveBudget is the movement allowance granted at each turn start.
	MoveBudget int
	// MoveRemaining is the movement left this turn.
	MoveRemaining int
	// Acted is true once the combatant has taken its action this turn.
	Acted bool

	// Weapon is the equipped melee or ranged weapon.
	Weapon Weapon
	// Skill is an optional support skill (healing); nil when absent.
	Skill *SupportSkill

	// Statuses is the set of active timed effects on this combatant.
	Statuses *status.ActiveSet
	// Proficiencies maps weapon families to skill tiers. Families without an
	// entry resolve to the Familiar baseline.
	Proficiencies map[Family]proficiency.Tier
}

// New creates a living combatant with a fresh UUID, full HP, a reset movement
// budget, and an empty status set.
//
// Precondition: stats.MaxHP > 0.
func New(name, faction string, stats Stats, pos grid.Cell, moveBudget int) *Combatant {
	return &Combatant{
		ID:            uuid.New().String(),
		Name:          name,
		Faction:       faction,
		Stats:         stats,
		HP:            stats.MaxHP,
		Pos:           pos,
		MoveBudget:    moveBudget,
		MoveRemaining: moveBudget,
		Statuses:      status.NewActiveSet(),
		Proficiencies: make(map[Family]proficiency.Tier),
	}
}

// Alive reports whether the combatant has HP > 0.
func (c *Combatant) Alive() bool { return c.HP > 0 }

// ApplyDamage reduces HP by amount, flooring at zero, and returns the new HP.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= HP <= previous HP.
func (c *Combatant) ApplyDamage(amount int) int {
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
	return c.HP
}

// Heal raises HP by amount, capped at MaxHP, and returns the new HP. Healing
// a dead combatant is a no-op; revival is not part of this system.
//
// Precondition: amount >= 0.
func (c *Combatant) Heal(amount int) int {
	if !c.Alive() {
		return c.HP
	}
	c.HP += amount
	if c.HP > c.Stats.MaxHP {
		c.HP = c.Stats.MaxHP
	}
	return c.HP
}

// TierFor returns the proficiency tier for the given weapon family, falling
// back to the Familiar baseline when the combatant has no entry.
func (c *Combatant) TierFor(family Family) proficiency.Tier {
	if tier, ok := c.Proficiencies[family]; ok {
		return tier
	}
	return proficiency.Familiar
}

// ResetTurn restores the movement budget (scaled by any status speed
// multiplier) and clears the acted flag at the start of the combatant's turn.
func (c *Combatant) ResetTurn() {
	budget := float64(c.MoveBudget) * c.Statuses.SpeedMultiplier()
	c.MoveRemaining = int(budget)
	if c.Statuses.PreventsMovement() {
		c.MoveRemaining = 0
	}
	c.Acted = false
}

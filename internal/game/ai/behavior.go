// Package ai implements the decision engine for non-player units: tagged
// behavior variants that pick targets, actions, and destinations, a per-unit
// asynchronous turn runner, and the sequencer that drives a whole turn window
// with per-unit timeouts.
package ai

import (
	"fmt"

	"github.com/torvik/gridfall/internal/game/combat"
	"github.com/torvik/gridfall/internal/game/dice"
	"github.com/torvik/gridfall/internal/game/faction"
	"github.com/torvik/gridfall/internal/game/grid"
)

// Kind tags a behavior variant.
type Kind int

const (
	Berserker Kind = iota
	Support
	Coward
	Protector
)

// String returns the behavior label used in scenario files.
func (k Kind) String() string {
	switch k {
	case Berserker:
		return "berserker"
	case Support:
		return "support"
	case Coward:
		return "coward"
	case Protector:
		return "protector"
	default:
		return "unknown"
	}
}

// ParseKind parses a behavior label from scenario content.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "berserker":
		return Berserker, nil
	case "support":
		return Support, nil
	case "coward":
		return Coward, nil
	case "protector":
		return Protector, nil
	default:
		return Berserker, fmt.Errorf("ai: unknown behavior kind %q", s)
	}
}

// Action is what a unit intends to do once positioned.
type Action int

const (
	ActionWait Action = iota
	ActionMeleeAttack
	ActionRangedSkill
	ActionSupport
	ActionMove
)

// Tunables holds the scoring weights a behavior variant is configured with.
type Tunables struct {
	// WeightLowHP scales the preference for wounded targets.
	WeightLowHP float64
	// WeightCloser scales the distance term in target and move scoring.
	WeightCloser float64
	// HazardAvoidance scales the fixed hazard cell penalty.
	HazardAvoidance float64
	// SupportPreference is the probability in [0, 1] that a Support unit
	// checks allies before enemies.
	SupportPreference float64
	// HealThreshold is the ally HP fraction below which healing is wanted.
	HealThreshold float64
}

// DefaultTunables returns the shipped behavior weights.
func DefaultTunables() Tunables {
	return Tunables{
		WeightLowHP:       5,
		WeightCloser:      0.5,
		HazardAvoidance:   1.0,
		SupportPreference: 0.7,
		HealThreshold:     0.8,
	}
}

// Terrain is the slice of the board a behavior needs for move scoring.
type Terrain interface {
	HazardAt(cell grid.Cell) (int, bool)
}

// Behavior is one decision-making variant. Implementations must be
// deterministic apart from draws on the injected dice source.
type Behavior interface {
	Kind() Kind
	// ChooseTarget scores candidates and returns the best one, or nil when no
	// valid target exists (the unit then ends its turn as a no-op).
	ChooseTarget(self *combat.Combatant, all []*combat.Combatant) *combat.Combatant
	// ChooseAction picks what to do about target from the unit's current
	// position.
	ChooseAction(self, target *combat.Combatant) Action
	// EvaluateBestMove scores each reachable cell and returns the best
	// destination, or (current position, false) when staying put is best.
	EvaluateBestMove(self, target *combat.Combatant, reachable []grid.Cell) (grid.Cell, bool)
}

// core carries the collaborators shared by every behavior variant.
type core struct {
	factions *faction.Resolver
	terrain  Terrain
	rng      dice.Source
	tun      Tunables
}

// New constructs the behavior variant for kind.
//
// Precondition: factions, terrain, and rng must be non-nil.
func New(kind Kind, factions *faction.Resolver, terrain Terrain, rng dice.Source, tun Tunables) Behavior {
	c := core{factions: factions, terrain: terrain, rng: rng, tun: tun}
	switch kind {
	case Support:
		return &supportBehavior{core: c}
	case Coward:
		return &cowardBehavior{core: c}
	case Protector:
		return &protectorBehavior{core: c}
	default:
		return &berserkerBehavior{core: c}
	}
}

// hazardPenalty is the heavy fixed penalty for standing on a hazard cell.
func (c *core) hazardPenalty(cell grid.Cell) float64 {
	if _, ok := c.terrain.HazardAt(cell); ok {
		return -1000 * c.tun.HazardAvoidance
	}
	return 0
}

// attackActionFor returns the attack action self can take against target from
// its current position, or ActionMove when target is out of reach.
func attackActionFor(self, target *combat.Combatant) Action {
	reach := self.Weapon.Reach
	if reach < 1 {
		reach = 1
	}
	if self.Pos.Chebyshev(target.Pos) > reach {
		return ActionMove
	}
	if reach > 1 {
		return ActionRangedSkill
	}
	return ActionMeleeAttack
}

// hpFraction returns current HP as a fraction of max, in [0, 1].
func hpFraction(u *combat.Combatant) float64 {
	if u.Stats.MaxHP <= 0 {
		return 0
	}
	return float64(u.HP) / float64(u.Stats.MaxHP)
}

// pickBestCell returns the highest-scoring reachable cell if it strictly
// beats staying put; ties favor the current position, then first-found.
func pickBestCell(self *combat.Combatant, reachable []grid.Cell, score func(grid.Cell) float64) (grid.Cell, bool) {
	best := self.Pos
	bestScore := score(self.Pos)
	moved := false
	for _, cell := range reachable {
		if s := score(cell); s > bestScore {
			best, bestScore, moved = cell, s, true
		}
	}
	return best, moved
}

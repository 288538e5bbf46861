package ai

import (
	"github.com/torvik/gridfall/internal/game/combat"
	"github.com/torvik/gridfall/internal/game/grid"
)

// berserkerBehavior closes on wounded enemies and hits them in melee.
type berserkerBehavior struct {
	core
}

func (b *berserkerBehavior) Kind() Kind { return Berserker }

// ChooseTarget scores every living hostile:
// (1 - hp%) * WeightLowHP - distance * WeightCloser, ties first-found.
func (b *berserkerBehavior) ChooseTarget(self *combat.Combatant, all []*combat.Combatant) *combat.Combatant {
	return b.bestHostile(self, all, func(cand *combat.Combatant) float64 {
		return (1-hpFraction(cand))*b.tun.WeightLowHP -
			float64(self.Pos.Chebyshev(cand.Pos))*b.tun.WeightCloser
	})
}

func (b *berserkerBehavior) ChooseAction(self, target *combat.Combatant) Action {
	return attackActionFor(self, target)
}

// EvaluateBestMove closes distance and rewards ending adjacent when the
// weapon is melee.
func (b *berserkerBehavior) EvaluateBestMove(self, target *combat.Combatant, reachable []grid.Cell) (grid.Cell, bool) {
	return pickBestCell(self, reachable, func(cell grid.Cell) float64 {
		score := -float64(cell.Chebyshev(target.Pos))*b.tun.WeightCloser + b.hazardPenalty(cell)
		if self.Weapon.Reach <= 1 && cell.Adjacent(target.Pos) {
			score += b.tun.WeightLowHP
		}
		return score
	})
}

// bestHostile is the shared hostile-target scan.
func (c *core) bestHostile(self *combat.Combatant, all []*combat.Combatant, score func(*combat.Combatant) float64) *combat.Combatant {
	var best *combat.Combatant
	var bestScore float64
	for _, cand := range all {
		if cand == self || !cand.Alive() || !c.factions.IsHostile(self.Faction, cand.Faction) {
			continue
		}
		s := score(cand)
		if best == nil || s > bestScore {
			best, bestScore = cand, s
		}
	}
	return best
}

// supportBehavior heals wounded allies when it can, and otherwise snipes
// from a distance.
type supportBehavior struct {
	core
}

func (b *supportBehavior) Kind() Kind { return Support }

// ChooseTarget checks allies first, gated by SupportPreference: the most
// wounded living ally below the heal threshold wins. Otherwise it falls back
// to enemy scoring with the distance term inverted (prefers standing off).
func (b *supportBehavior) ChooseTarget(self *combat.Combatant, all []*combat.Combatant) *combat.Combatant {
	gate := int(b.tun.SupportPreference * 100)
	if self.Skill != nil && b.rng.Intn(100) < gate {
		if ally := b.mostWoundedAlly(self, all); ally != nil {
			return ally
		}
	}
	return b.bestHostile(self, all, func(cand *combat.Combatant) float64 {
		return (1-hpFraction(cand))*b.tun.WeightLowHP +
			float64(self.Pos.Chebyshev(cand.Pos))*b.tun.WeightCloser
	})
}

func (b *supportBehavior) mostWoundedAlly(self *combat.Combatant, all []*combat.Combatant) *combat.Combatant {
	var worst *combat.Combatant
	var worstFrac float64
	for _, cand := range all {
		if !cand.Alive() || !b.factions.IsAlly(self.Faction, cand.Faction) {
			continue
		}
		frac := hpFraction(cand)
		if frac >= b.tun.HealThreshold {
			continue
		}
		if worst == nil || frac < worstFrac {
			worst, worstFrac = cand, frac
		}
	}
	return worst
}

func (b *supportBehavior) ChooseAction(self, target *combat.Combatant) Action {
	if b.factions.IsAlly(self.Faction, target.Faction) {
		if self.Skill == nil {
			return ActionWait
		}
		if self.Pos.Chebyshev(target.Pos) > self.Skill.Range {
			return ActionMove
		}
		return ActionSupport
	}
	return attackActionFor(self, target)
}

// EvaluateBestMove keeps allies in skill range but otherwise backs away from
// the target.
func (b *supportBehavior) EvaluateBestMove(self, target *combat.Combatant, reachable []grid.Cell) (grid.Cell, bool) {
	if b.factions.IsAlly(self.Faction, target.Faction) && self.Skill != nil {
		// Close to healing range.
		return pickBestCell(self, reachable, func(cell grid.Cell) float64 {
			score := b.hazardPenalty(cell)
			if dist := cell.Chebyshev(target.Pos); dist > self.Skill.Range {
				score -= float64(dist-self.Skill.Range) * b.tun.WeightCloser
			}
			return score
		})
	}
	return pickBestCell(self, reachable, func(cell grid.Cell) float64 {
		return float64(cell.Chebyshev(target.Pos))*b.tun.WeightCloser + b.hazardPenalty(cell)
	})
}

// cowardBehavior picks off the weakest enemy in reach but never closes
// distance, retreating whenever possible.
type cowardBehavior struct {
	core
}

func (b *cowardBehavior) Kind() Kind { return Coward }

// ChooseTarget picks the living hostile with the lowest HP fraction, ties
// first-found.
func (b *cowardBehavior) ChooseTarget(self *combat.Combatant, all []*combat.Combatant) *combat.Combatant {
	return b.bestHostile(self, all, func(cand *combat.Combatant) float64 {
		return (1 - hpFraction(cand)) * b.tun.WeightLowHP
	})
}

// ChooseAction attacks only when the target is already in reach; a coward
// does not advance to engage.
func (b *cowardBehavior) ChooseAction(self, target *combat.Combatant) Action {
	if action := attackActionFor(self, target); action != ActionMove {
		return action
	}
	return ActionWait
}

// EvaluateBestMove maximises distance from the target.
func (b *cowardBehavior) EvaluateBestMove(self, target *combat.Combatant, reachable []grid.Cell) (grid.Cell, bool) {
	return pickBestCell(self, reachable, func(cell grid.Cell) float64 {
		return float64(cell.Chebyshev(target.Pos))*b.tun.WeightCloser + b.hazardPenalty(cell)
	})
}

// protectorBehavior guards its most wounded ally, intercepting whichever
// hostile is closest to the ward.
type protectorBehavior struct {
	core
}

func (b *protectorBehavior) Kind() Kind { return Protector }

// ChooseTarget picks the living hostile nearest to the protector's ward (its
// most wounded other ally); with no ward it scores like a berserker.
func (b *protectorBehavior) ChooseTarget(self *combat.Combatant, all []*combat.Combatant) *combat.Combatant {
	anchor := self.Pos
	if ward := b.ward(self, all); ward != nil {
		anchor = ward.Pos
	}
	return b.bestHostile(self, all, func(cand *combat.Combatant) float64 {
		return (1-hpFraction(cand))*b.tun.WeightLowHP -
			float64(anchor.Chebyshev(cand.Pos))*b.tun.WeightCloser
	})
}

func (b *protectorBehavior) ward(self *combat.Combatant, all []*combat.Combatant) *combat.Combatant {
	var ward *combat.Combatant
	var wardFrac float64
	for _, cand := range all {
		if cand == self || !cand.Alive() || !b.factions.IsAlly(self.Faction, cand.Faction) {
			continue
		}
		frac := hpFraction(cand)
		if ward == nil || frac < wardFrac {
			ward, wardFrac = cand, frac
		}
	}
	return ward
}

func (b *protectorBehavior) ChooseAction(self, target *combat.Combatant) Action {
	return attackActionFor(self, target)
}

// EvaluateBestMove closes on the target while penalising hazards, with the
// melee adjacency reward.
func (b *protectorBehavior) EvaluateBestMove(self, target *combat.Combatant, reachable []grid.Cell) (grid.Cell, bool) {
	return pickBestCell(self, reachable, func(cell grid.Cell) float64 {
		score := -float64(cell.Chebyshev(target.Pos))*b.tun.WeightCloser + b.hazardPenalty(cell)
		if self.Weapon.Reach <= 1 && cell.Adjacent(target.Pos) {
			score += b.tun.WeightLowHP
		}
		return score
	})
}

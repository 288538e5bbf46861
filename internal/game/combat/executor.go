package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/torvik/gridfall/internal/game/dice"
)

// EventSink receives the observable side effects of executed actions. The
// turn engine implements it and fans the notifications out to observers.
type EventSink interface {
	// UnitDamaged is raised after HP is reduced.
	UnitDamaged(unit *Combatant, oldHP, newHP int)
	// UnitHealed is raised after HP is restored.
	UnitHealed(unit *Combatant, oldHP, newHP int)
	// UnitDied is raised once when a unit's HP reaches zero.
	UnitDied(unit *Combatant)
}

// Executor applies attack and support actions: it rolls base damage, runs
// the resolver, mutates HP, and reports the effects to the EventSink. Player
// action requests and the AI engine share the same executor so the rules
// cannot drift apart.
type Executor struct {
	roller *dice.Roller
	tuning Tuning
	log    *zap.Logger
	sink   EventSink
}

// NewExecutor creates an Executor.
//
// Precondition: roller, logger, and sink must be non-nil.
func NewExecutor(roller *dice.Roller, tuning Tuning, logger *zap.Logger, sink EventSink) *Executor {
	return &Executor{roller: roller, tuning: tuning, log: logger, sink: sink}
}

// Attack performs one weapon attack from attacker against target.
//
// Invalid input (nil or dead participants, target out of reach) is recovered
// locally: a warning is logged and an error returned, with no state change.
//
// Postcondition: On success, target HP reflects the resolution result and the
// sink has been notified of any damage and death.
func (e *Executor) Attack(attacker, target *Combatant, weapon Weapon) (Result, error) {
	if attacker == nil || target == nil {
		e.log.Warn("attack rejected: nil participant")
		return Result{}, fmt.Errorf("combat: attack requires non-nil attacker and target")
	}
	if !attacker.Alive() {
		e.log.Warn("attack rejected: attacker is dead", zap.String("attacker", attacker.Name))
		return Result{}, fmt.Errorf("combat: attacker %q is dead", attacker.Name)
	}
	if !target.Alive() {
		e.log.Warn("attack rejected: target is dead",
			zap.String("attacker", attacker.Name),
			zap.String("target", target.Name))
		return Result{}, fmt.Errorf("combat: target %q is dead", target.Name)
	}
	reach := weapon.Reach
	if reach < 1 {
		reach = 1
	}
	if dist := attacker.Pos.Chebyshev(target.Pos); dist > reach {
		e.log.Warn("attack rejected: target out of reach",
			zap.String("attacker", attacker.Name),
			zap.String("target", target.Name),
			zap.Int("distance", dist),
			zap.Int("reach", reach))
		return Result{}, fmt.Errorf("combat: target %q out of reach (%d > %d)", target.Name, dist, reach)
	}

	baseDamage := e.roller.Roll(weapon.Damage).Total() + attacker.Stats.Attack
	tier := attacker.TierFor(weapon.Family)
	res := Resolve(e.roller.Source(), attacker, target, baseDamage, tier, e.tuning)

	e.log.Debug("attack resolved",
		zap.String("attacker", attacker.Name),
		zap.String("target", target.Name),
		zap.String("weapon", weapon.Name),
		zap.String("tier", tier.String()),
		zap.Bool("hit", res.Hit),
		zap.Bool("parried", res.Parried),
		zap.Bool("crit", res.CriticalHit),
		zap.Bool("crit_defended", res.CriticalDefended),
		zap.Int("damage", res.FinalDamage),
	)

	if res.FinalDamage > 0 {
		oldHP := target.HP
		newHP := target.ApplyDamage(res.FinalDamage)
		e.sink.UnitDamaged(target, oldHP, newHP)
		if newHP == 0 {
			e.sink.UnitDied(target)
		}
	}
	attacker.Acted = true
	return res, nil
}

// Support applies actor's support skill to ally, healing it.
//
// Postcondition: On success, ally HP is raised (capped at max) and the sink
// notified; returns the amount actually restored.
func (e *Executor) Support(actor, ally *Combatant) (int, error) {
	if actor == nil || ally == nil {
		e.log.Warn("support rejected: nil participant")
		return 0, fmt.Errorf("combat: support requires non-nil actor and ally")
	}
	if actor.Skill == nil {
		e.log.Warn("support rejected: no support skill", zap.String("actor", actor.Name))
		return 0, fmt.Errorf("combat: %q has no support skill", actor.Name)
	}
	if !actor.Alive() || !ally.Alive() {
		e.log.Warn("support rejected: dead participant",
			zap.String("actor", actor.Name),
			zap.String("ally", ally.Name))
		return 0, fmt.Errorf("combat: support requires living actor and ally")
	}
	if dist := actor.Pos.Chebyshev(ally.Pos); dist > actor.Skill.Range {
		e.log.Warn("support rejected: ally out of range",
			zap.String("actor", actor.Name),
			zap.String("ally", ally.Name),
			zap.Int("distance", dist),
			zap.Int("range", actor.Skill.Range))
		return 0, fmt.Errorf("combat: ally %q out of range (%d > %d)", ally.Name, dist, actor.Skill.Range)
	}

	amount := e.roller.Roll(actor.Skill.Healing).Total()
	if amount < 0 {
		amount = 0
	}
	oldHP := ally.HP
	newHP := ally.Heal(amount)
	if newHP != oldHP {
		e.sink.UnitHealed(ally, oldHP, newHP)
	}
	actor.Acted = true

	e.log.Debug("support resolved",
		zap.String("actor", actor.Name),
		zap.String("ally", ally.Name),
		zap.String("skill", actor.Skill.Name),
		zap.Int("healed", newHP-oldHP),
	)
	return newHP - oldHP, nil
}

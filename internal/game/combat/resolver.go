package combat

import (
	"math"

	"github.com/torvik/gridfall/internal/game/dice"
	"github.com/torvik/gridfall/internal/game/proficiency"
)

// Tuning holds the balance knobs for attack resolution. Values come from
// configuration; DefaultTuning is the shipped baseline.
type Tuning struct {
	BaseHit          int
	FinesseHitFactor int
	HitFloor         int
	HitCeiling       int

	BaseParry          int
	FinesseParryFactor int
	ParryCeiling       int

	BaseCrit       int
	LuckCritFactor int
	CritCeiling    int

	BaseCritDefense        int
	FocusCritDefenseFactor int
	CritDefenseCeiling     int

	// CritMultiplier scales base damage on an undefended critical hit.
	CritMultiplier float64
	// MinDamage is the damage floor for any non-parried hit.
	MinDamage int
}

// DefaultTuning returns the baseline balance values.
func DefaultTuning() Tuning {
	return Tuning{
		BaseHit:                70,
		FinesseHitFactor:       2,
		HitFloor:               5,
		HitCeiling:             95,
		BaseParry:              3,
		FinesseParryFactor:     1,
		ParryCeiling:           30,
		BaseCrit:               5,
		LuckCritFactor:         1,
		CritCeiling:            50,
		BaseCritDefense:        5,
		FocusCritDefenseFactor: 1,
		CritDefenseCeiling:     50,
		CritMultiplier:         1.5,
		MinDamage:              1,
	}
}

// Result is the transient outcome of one attack. It is consumed immediately
// by the action executor and never persisted.
type Result struct {
	Hit              bool
	Parried          bool
	CriticalHit      bool
	CriticalDefended bool
	// FinalDamage is the damage actually dealt; always >= 0, and 0 on a miss
	// or parry.
	FinalDamage int

	// Audit fields for logging and tests.
	HitChance   int
	ParryChance int
	CritChance  int
	CritDefense int
}

// Resolve computes the outcome of one attack. It is pure apart from draws on
// src: no mutation of attacker or target, so it is reproducible for a fixed
// random source.
//
// Resolution order: hit roll (a miss short-circuits everything), parry roll
// (a parry negates all damage), independent critical and critical-defense
// rolls, then damage: baseDamage, times the critical multiplier when the crit
// lands undefended, minus the target's defense power, floored at
// tuning.MinDamage.
//
// Precondition: attacker and target must be non-nil; src must be non-nil.
// Postcondition: result.FinalDamage >= tuning.MinDamage for every non-parried
// hit, and 0 otherwise.
func Resolve(src dice.Source, attacker, target *Combatant, baseDamage int, tier proficiency.Tier, tuning Tuning) Result {
	fx := proficiency.EffectsFor(tier)
	atkMods := attacker.Statuses.Modifiers()
	tgtMods := target.Statuses.Modifiers()

	// Proficiency stat efficiency scales the attacker's stats before any of
	// the chance math.
	effFinesse := scaleStat(attacker.Stats.Finesse, fx.StatEfficiency)
	effLuck := scaleStat(attacker.Stats.Luck, fx.StatEfficiency)

	res := Result{
		HitChance:   clamp(tuning.BaseHit+effFinesse*tuning.FinesseHitFactor+atkMods.Hit+fx.HitVariance, tuning.HitFloor, tuning.HitCeiling),
		ParryChance: clamp(tuning.BaseParry+target.Stats.Finesse*tuning.FinesseParryFactor+tgtMods.Parry, 0, tuning.ParryCeiling),
		CritChance:  clamp(tuning.BaseCrit+effLuck*tuning.LuckCritFactor+atkMods.Crit, 0, tuning.CritCeiling),
		CritDefense: clamp(tuning.BaseCritDefense+target.Stats.Focus*tuning.FocusCritDefenseFactor+tgtMods.CritDefense, 0, tuning.CritDefenseCeiling),
	}

	if dice.Percent(src) > res.HitChance {
		return res // miss: Hit stays false, FinalDamage 0
	}
	res.Hit = true

	if dice.Percent(src) <= res.ParryChance {
		res.Parried = true
		return res
	}

	res.CriticalHit = dice.Percent(src) < res.CritChance
	res.CriticalDefended = dice.Percent(src) < res.CritDefense

	damage := baseDamage
	if res.CriticalHit && !res.CriticalDefended {
		damage = int(math.Round(float64(baseDamage) * tuning.CritMultiplier))
	}
	damage -= target.Stats.Defense
	if damage < tuning.MinDamage {
		damage = tuning.MinDamage
	}
	res.FinalDamage = damage
	return res
}

// scaleStat applies the proficiency efficiency multiplier to a stat,
// truncating toward zero.
func scaleStat(stat int, efficiency float64) int {
	return int(float64(stat) * efficiency)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package proficiency defines the ordinal weapon-family skill tiers and their
// combat modifier table.
package proficiency

// Tier is an ordinal skill level with a weapon family.
type Tier int

const (
	Untrained Tier = iota
	Novice
	Apprentice
	Familiar
	Skilled
	Adept
	Expert
	Veteran
	Master
	Legendary
)

// String returns the tier name, or "unknown" for out-of-range values.
func (t Tier) String() string {
	if t < Untrained || t > Legendary {
		return "unknown"
	}
	return tierNames[t]
}

var tierNames = [...]string{
	"untrained", "novice", "apprentice", "familiar", "skilled",
	"adept", "expert", "veteran", "master", "legendary",
}

// Effects holds the modifiers a tier grants. Every field is monotonically
// non-decreasing with tier.
type Effects struct {
	// StatEfficiency scales the attacker's combat stats before resolution,
	// in [0.5, 1.5]. Familiar is the 1.0 baseline.
	StatEfficiency float64
	// HitVariance is a flat hit-chance bonus in [0, 15] percentage points.
	HitVariance int
	// FumbleReduction is a flat fumble-chance reduction in [0, 20] points.
	// Reserved: the resolver does not yet roll fumbles.
	FumbleReduction int
	// RecoveryBonus speeds up between-action recovery, in [0, 0.30].
	RecoveryBonus float64
	// StaminaEfficiency reduces action stamina costs, in [0, 0.30].
	StaminaEfficiency float64
}

// table maps each tier to its effects. Tiers below Familiar pay an efficiency
// penalty but grant no negative bonuses.
var table = map[Tier]Effects{
	Untrained:  {StatEfficiency: 0.50},
	Novice:     {StatEfficiency: 0.70},
	Apprentice: {StatEfficiency: 0.85},
	Familiar:   {StatEfficiency: 1.00},
	Skilled:    {StatEfficiency: 1.10, HitVariance: 3, FumbleReduction: 4, RecoveryBonus: 0.05, StaminaEfficiency: 0.05},
	Adept:      {StatEfficiency: 1.20, HitVariance: 5, FumbleReduction: 7, RecoveryBonus: 0.10, StaminaEfficiency: 0.10},
	Expert:     {StatEfficiency: 1.30, HitVariance: 8, FumbleReduction: 10, RecoveryBonus: 0.15, StaminaEfficiency: 0.15},
	Veteran:    {StatEfficiency: 1.40, HitVariance: 10, FumbleReduction: 14, RecoveryBonus: 0.20, StaminaEfficiency: 0.20},
	Master:     {StatEfficiency: 1.45, HitVariance: 12, FumbleReduction: 17, RecoveryBonus: 0.25, StaminaEfficiency: 0.25},
	Legendary:  {StatEfficiency: 1.50, HitVariance: 15, FumbleReduction: 20, RecoveryBonus: 0.30, StaminaEfficiency: 0.30},
}

// EffectsFor returns the modifier row for tier. Unknown tiers fall back to
// the Familiar baseline row.
//
// Postcondition: Returns a fully populated Effects value.
func EffectsFor(tier Tier) Effects {
	if fx, ok := table[tier]; ok {
		return fx
	}
	return table[Familiar]
}

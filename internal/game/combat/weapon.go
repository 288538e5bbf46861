package combat

import "github.com/torvik/gridfall/internal/game/dice"

// Family groups weapons for proficiency purposes.
type Family string

const (
	FamilyBlade    Family = "blade"
	FamilyAxe      Family = "axe"
	FamilyPolearm  Family = "polearm"
	FamilyBow      Family = "bow"
	FamilyThrown   Family = "thrown"
	FamilyFocusRod Family = "focus_rod"
	FamilyUnarmed  Family = "unarmed"
)

// Weapon is an equipped attack option. Reach 1 is melee; larger reach values
// are ranged, measured in Chebyshev distance.
type Weapon struct {
	Name   string
	Family Family
	// Damage is the base-damage expression rolled per attack, e.g. "2d6+3".
	Damage dice.Expression
	Reach  int
}

// Fists is the fallback weapon for combatants equipped with nothing.
var Fists = Weapon{
	Name:   "fists",
	Family: FamilyUnarmed,
	Damage: dice.MustParse("1d4"),
	Reach:  1,
}

// SupportSkill is a ranged ally-targeted healing skill.
type SupportSkill struct {
	Name string
	// Healing is the heal-amount expression rolled per use.
	Healing dice.Expression
	Range   int
}

package status

// Modifiers is the aggregate combat adjustment from all active effects,
// consumed by the combat resolver's stat-gathering step.
type Modifiers struct {
	Hit         int
	Parry       int
	Crit        int
	CritDefense int
}

// Modifiers sums the hit/parry/crit/crit-defense adjustments across all
// active effects.
func (s *ActiveSet) Modifiers() Modifiers {
	var m Modifiers
	for _, inst := range s.instances {
		m.Hit += inst.Def.HitModifier
		m.Parry += inst.Def.ParryModifier
		m.Crit += inst.Def.CritModifier
		m.CritDefense += inst.Def.CritDefenseModifier
	}
	return m
}

// PreventsActions reports whether any active effect blocks the unit from
// acting this turn.
func (s *ActiveSet) PreventsActions() bool {
	for _, inst := range s.instances {
		if inst.Def.PreventsActions {
			return true
		}
	}
	return false
}

// PreventsMovement reports whether any active effect blocks movement.
func (s *ActiveSet) PreventsMovement() bool {
	for _, inst := range s.instances {
		if inst.Def.PreventsMovement {
			return true
		}
	}
	return false
}

// SpeedMultiplier returns the product of all active movement-speed
// multipliers. With no active effects the result is 1.0; definitions with a
// zero multiplier are treated as 1.0.
func (s *ActiveSet) SpeedMultiplier() float64 {
	mult := 1.0
	for _, inst := range s.instances {
		if inst.Def.SpeedMultiplier > 0 {
			mult *= inst.Def.SpeedMultiplier
		}
	}
	return mult
}

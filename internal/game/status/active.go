package status

import "fmt"

// Instance is one applied status effect on a unit.
type Instance struct {
	Def *EffectDef
	// Remaining is the duration left in turns. It decrements by exactly 1
	// each time the owning unit's turn starts.
	Remaining int
}

// Expired reports whether the instance has run out.
func (i *Instance) Expired() bool { return i.Remaining <= 0 }

// Target is the unit a status effect ticks against. combat.Combatant
// satisfies it.
type Target interface {
	// Alive reports whether the unit has HP > 0.
	Alive() bool
	// ApplyDamage reduces HP by amount (flooring at 0) and returns the new HP.
	ApplyDamage(amount int) int
	// Heal raises HP by amount (capped at max) and returns the new HP.
	Heal(amount int) int
}

// TickResult records what one effect did during a turn-start tick.
type TickResult struct {
	EffectID string
	Damage   int
	Heal     int
	Expired  bool
}

// ActiveSet tracks all status effects currently applied to one unit.
// It is not safe for concurrent use; the turn engine serialises access.
type ActiveSet struct {
	instances map[string]*Instance
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{instances: make(map[string]*Instance)}
}

// Apply adds the effect to this unit, or refreshes it if already present.
// Refreshing keeps the longer of the current and new durations; effects never
// stack additively.
//
// Precondition: def must not be nil; duration must be >= 1.
// Postcondition: Has(def.ID) is true and Remaining(def.ID) >=
// min(duration, previous remaining).
func (s *ActiveSet) Apply(def *EffectDef, duration int) error {
	if def == nil {
		return fmt.Errorf("status: Apply requires a non-nil definition")
	}
	if duration < 1 {
		return fmt.Errorf("status: Apply(%q) requires duration >= 1, got %d", def.ID, duration)
	}
	if existing, ok := s.instances[def.ID]; ok {
		if duration > existing.Remaining {
			existing.Remaining = duration
		}
		return nil
	}
	s.instances[def.ID] = &Instance{Def: def, Remaining: duration}
	return nil
}

// Remove deletes the effect with the given ID. Absent IDs are a no-op.
func (s *ActiveSet) Remove(id string) {
	delete(s.instances, id)
}

// Has reports whether the effect with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.instances[id]
	return ok
}

// Remaining returns the turns left for effect id, or 0 if not present.
func (s *ActiveSet) Remaining(id string) int {
	if inst, ok := s.instances[id]; ok {
		return inst.Remaining
	}
	return 0
}

// OnTurnStart ticks every active effect against target: per-turn damage and
// healing are applied first, then the duration decrements. An effect with
// Remaining == 1 therefore fires once more before expiring (apply-then-expire).
// Nothing is applied when target is already dead, but durations still
// decrement so stale effects drain off.
//
// Postcondition: Every effect's Remaining is one lower than before; expired
// effects are removed from the set.
func (s *ActiveSet) OnTurnStart(target Target) []TickResult {
	var results []TickResult
	for id, inst := range s.instances {
		res := TickResult{EffectID: id}
		if target.Alive() {
			if inst.Def.DamagePerTurn > 0 {
				target.ApplyDamage(inst.Def.DamagePerTurn)
				res.Damage = inst.Def.DamagePerTurn
			}
			if inst.Def.HealPerTurn > 0 {
				target.Heal(inst.Def.HealPerTurn)
				res.Heal = inst.Def.HealPerTurn
			}
		}
		inst.Remaining--
		if inst.Expired() {
			res.Expired = true
			delete(s.instances, id)
		}
		results = append(results, res)
	}
	return results
}

// All returns a snapshot slice of the active instances. The slice is freshly
// allocated but the pointed-to Instances are shared; callers must not modify
// them.
func (s *ActiveSet) All() []*Instance {
	out := make([]*Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		out = append(out, inst)
	}
	return out
}

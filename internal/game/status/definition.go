// Package status implements timed status effects: YAML-loaded definitions,
// per-unit active sets, turn-start ticking, and the aggregate combat
// modifiers the resolver consumes.
package status

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EffectDef is the static definition of a status effect, loaded from YAML.
type EffectDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// DamagePerTurn is applied at the owning unit's turn start; 0 = none.
	DamagePerTurn int `yaml:"damage_per_turn"`
	// HealPerTurn is applied at the owning unit's turn start; 0 = none.
	HealPerTurn int `yaml:"heal_per_turn"`

	PreventsActions  bool `yaml:"prevents_actions"`
	PreventsMovement bool `yaml:"prevents_movement"`
	// SpeedMultiplier scales movement; 0 is normalised to the 1.0 default.
	SpeedMultiplier float64 `yaml:"speed_multiplier"`

	HitModifier         int `yaml:"hit_modifier"`
	ParryModifier       int `yaml:"parry_modifier"`
	CritModifier        int `yaml:"crit_modifier"`
	CritDefenseModifier int `yaml:"crit_defense_modifier"`
}

// Registry holds all known EffectDefs keyed by ID.
type Registry struct {
	defs map[string]*EffectDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*EffectDef)}
}

// Register adds def to the registry, overwriting any existing entry with the
// same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *EffectDef) {
	r.defs[def.ID] = def
}

// Get returns the EffectDef for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*EffectDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot slice of all registered EffectDefs.
func (r *Registry) All() []*EffectDef {
	out := make([]*EffectDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as an EffectDef,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to
// parse or declares no ID.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading status effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def EffectDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if def.ID == "" {
			return nil, fmt.Errorf("parsing %q: status effect has no id", path)
		}
		reg.Register(&def)
	}
	return reg, nil
}

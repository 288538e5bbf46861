// Package scenario loads battle definitions from YAML: board layout,
// participating units, and the encounter's victory configuration.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/torvik/gridfall/internal/game/ai"
	"github.com/torvik/gridfall/internal/game/combat"
	"github.com/torvik/gridfall/internal/game/dice"
	"github.com/torvik/gridfall/internal/game/grid"
	"github.com/torvik/gridfall/internal/game/proficiency"
	"github.com/torvik/gridfall/internal/game/status"
	"github.com/torvik/gridfall/internal/game/turn"
)

// Scenario is one parsed battle definition.
type Scenario struct {
	Name      string       `yaml:"name"`
	Board     BoardDef     `yaml:"board"`
	Encounter EncounterDef `yaml:"encounter"`
	Units     []UnitDef    `yaml:"units"`
}

// BoardDef describes the grid.
type BoardDef struct {
	Width   int         `yaml:"width"`
	Height  int         `yaml:"height"`
	Blocked []CellDef   `yaml:"blocked"`
	Hazards []HazardDef `yaml:"hazards"`
}

// CellDef is a grid position in content files.
type CellDef struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// HazardDef places a hazard on the board.
type HazardDef struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Name   string `yaml:"name"`
	Damage int    `yaml:"damage"`
	// Rounds is the hazard duration; -1 means permanent.
	Rounds int `yaml:"rounds"`
}

// EncounterDef selects the victory condition.
type EncounterDef struct {
	PlayerFaction string `yaml:"player_faction"`
	Victory       string `yaml:"victory"`
	Rounds        int    `yaml:"rounds"`
	RoundLimit    int    `yaml:"round_limit"`
	// Autopilot drives player-faction windows with the AI too, for headless
	// simulation.
	Autopilot bool `yaml:"autopilot"`
}

// UnitDef describes one combatant.
type UnitDef struct {
	Name          string            `yaml:"name"`
	Faction       string            `yaml:"faction"`
	Behavior      string            `yaml:"behavior"`
	Position      CellDef           `yaml:"position"`
	MoveBudget    int               `yaml:"move_budget"`
	Stats         StatsDef          `yaml:"stats"`
	Weapon        WeaponDef         `yaml:"weapon"`
	Skill         *SkillDef         `yaml:"skill"`
	Proficiencies map[string]string `yaml:"proficiencies"`
	Statuses      []StatusDef       `yaml:"statuses"`
}

// StatsDef mirrors combat.Stats in content files.
type StatsDef struct {
	MaxHP   int `yaml:"max_hp"`
	Attack  int `yaml:"attack"`
	Defense int `yaml:"defense"`
	Speed   int `yaml:"speed"`
	Luck    int `yaml:"luck"`
	Finesse int `yaml:"finesse"`
	Focus   int `yaml:"focus"`
}

// WeaponDef describes an equipped weapon.
type WeaponDef struct {
	Name   string `yaml:"name"`
	Family string `yaml:"family"`
	Damage string `yaml:"damage"`
	Reach  int    `yaml:"reach"`
}

// SkillDef describes an optional support skill.
type SkillDef struct {
	Name    string `yaml:"name"`
	Healing string `yaml:"healing"`
	Range   int    `yaml:"range"`
}

// StatusDef applies an initial status effect.
type StatusDef struct {
	ID       string `yaml:"id"`
	Duration int    `yaml:"duration"`
}

// LoadFile reads and parses a scenario YAML file.
//
// Postcondition: Returns a non-nil Scenario or an error for unreadable files
// or unknown fields.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %q: %w", path, err)
	}
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %q: %w", path, err)
	}
	if len(sc.Units) == 0 {
		return nil, fmt.Errorf("scenario %q: no units", path)
	}
	return &sc, nil
}

// Build materialises the scenario: a board with terrain and hazards, the
// combatants placed on it, and the encounter configuration.
//
// Precondition: effects must be non-nil when any unit declares statuses.
// Postcondition: Every returned combatant occupies its board cell.
func (s *Scenario) Build(effects *status.Registry) (*grid.Board, []*combat.Combatant, turn.EncounterConfig, error) {
	var zero turn.EncounterConfig

	board, err := grid.NewBoard(s.Board.Width, s.Board.Height)
	if err != nil {
		return nil, nil, zero, err
	}
	for _, c := range s.Board.Blocked {
		board.SetBlocked(grid.Cell{X: c.X, Y: c.Y}, true)
	}
	for _, h := range s.Board.Hazards {
		rounds := h.Rounds
		if rounds == 0 {
			rounds = -1
		}
		board.AddHazard(grid.Cell{X: h.X, Y: h.Y}, grid.Hazard{
			Name:       h.Name,
			Damage:     h.Damage,
			RoundsLeft: rounds,
		})
	}

	units := make([]*combat.Combatant, 0, len(s.Units))
	for _, def := range s.Units {
		unit, err := def.build(effects)
		if err != nil {
			return nil, nil, zero, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		if err := board.Place(unit.ID, unit.Pos); err != nil {
			return nil, nil, zero, fmt.Errorf("scenario %q: placing %q: %w", s.Name, unit.Name, err)
		}
		units = append(units, unit)
	}

	cfg, err := s.Encounter.build()
	if err != nil {
		return nil, nil, zero, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return board, units, cfg, nil
}

func (d UnitDef) build(effects *status.Registry) (*combat.Combatant, error) {
	damage, err := dice.Parse(d.Weapon.Damage)
	if err != nil {
		return nil, fmt.Errorf("unit %q weapon: %w", d.Name, err)
	}
	if d.Behavior != "" {
		if _, err := ai.ParseKind(d.Behavior); err != nil {
			return nil, fmt.Errorf("unit %q: %w", d.Name, err)
		}
	}

	unit := combat.New(d.Name, d.Faction, combat.Stats{
		MaxHP:   d.Stats.MaxHP,
		Attack:  d.Stats.Attack,
		Defense: d.Stats.Defense,
		Speed:   d.Stats.Speed,
		Luck:    d.Stats.Luck,
		Finesse: d.Stats.Finesse,
		Focus:   d.Stats.Focus,
	}, grid.Cell{X: d.Position.X, Y: d.Position.Y}, d.MoveBudget)
	unit.Behavior = d.Behavior

	reach := d.Weapon.Reach
	if reach < 1 {
		reach = 1
	}
	unit.Weapon = combat.Weapon{
		Name:   d.Weapon.Name,
		Family: combat.Family(d.Weapon.Family),
		Damage: damage,
		Reach:  reach,
	}

	if d.Skill != nil {
		healing, err := dice.Parse(d.Skill.Healing)
		if err != nil {
			return nil, fmt.Errorf("unit %q skill: %w", d.Name, err)
		}
		unit.Skill = &combat.SupportSkill{
			Name:    d.Skill.Name,
			Healing: healing,
			Range:   d.Skill.Range,
		}
	}

	for family, tierName := range d.Proficiencies {
		tier, err := parseTier(tierName)
		if err != nil {
			return nil, fmt.Errorf("unit %q: %w", d.Name, err)
		}
		unit.Proficiencies[combat.Family(family)] = tier
	}

	for _, st := range d.Statuses {
		if effects == nil {
			return nil, fmt.Errorf("unit %q declares statuses but no effect registry was loaded", d.Name)
		}
		def, ok := effects.Get(st.ID)
		if !ok {
			return nil, fmt.Errorf("unit %q: unknown status effect %q", d.Name, st.ID)
		}
		if err := unit.Statuses.Apply(def, st.Duration); err != nil {
			return nil, fmt.Errorf("unit %q: %w", d.Name, err)
		}
	}
	return unit, nil
}

func (d EncounterDef) build() (turn.EncounterConfig, error) {
	cfg := turn.EncounterConfig{
		PlayerFaction:   d.PlayerFaction,
		Rounds:          d.Rounds,
		RoundLimit:      d.RoundLimit,
		AutopilotPlayer: d.Autopilot,
	}
	switch d.Victory {
	case "", "kill_all":
		cfg.Victory = turn.KillAll
	case "survive_rounds":
		cfg.Victory = turn.SurviveRounds
	case "protect_target":
		cfg.Victory = turn.ProtectTarget
	case "reach_location":
		cfg.Victory = turn.ReachLocation
	default:
		return cfg, fmt.Errorf("unknown victory condition %q", d.Victory)
	}
	if cfg.Victory == turn.SurviveRounds && cfg.Rounds <= 0 {
		return cfg, fmt.Errorf("survive_rounds requires rounds > 0")
	}
	return cfg, nil
}

func parseTier(name string) (proficiency.Tier, error) {
	for t := proficiency.Untrained; t <= proficiency.Legendary; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	return proficiency.Familiar, fmt.Errorf("unknown proficiency tier %q", name)
}

// Package config provides Viper-based configuration loading for the Gridfall
// combat core and simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CombatConfig holds the attack-resolution balance knobs.
type CombatConfig struct {
	BaseHit          int `mapstructure:"base_hit"`
	FinesseHitFactor int `mapstructure:"finesse_hit_factor"`
	HitFloor         int `mapstructure:"hit_floor"`
	HitCeiling       int `mapstructure:"hit_ceiling"`

	BaseParry          int `mapstructure:"base_parry"`
	FinesseParryFactor int `mapstructure:"finesse_parry_factor"`
	ParryCeiling       int `mapstructure:"parry_ceiling"`

	BaseCrit       int `mapstructure:"base_crit"`
	LuckCritFactor int `mapstructure:"luck_crit_factor"`
	CritCeiling    int `mapstructure:"crit_ceiling"`

	BaseCritDefense        int `mapstructure:"base_crit_defense"`
	FocusCritDefenseFactor int `mapstructure:"focus_crit_defense_factor"`
	CritDefenseCeiling     int `mapstructure:"crit_defense_ceiling"`

	// CritMultiplier scales base damage on an undefended critical hit.
	CritMultiplier float64 `mapstructure:"crit_multiplier"`
	// MinDamage is the damage floor for any non-parried hit.
	MinDamage int `mapstructure:"min_damage"`
}

// AIConfig holds decision-engine pacing and scoring settings.
type AIConfig struct {
	// ThinkDelay is the visual pacing pause before each AI decision.
	ThinkDelay time.Duration `mapstructure:"think_delay"`
	// TurnTimeout is the bound on one unit's completion signal before its
	// turn is force-ended.
	TurnTimeout time.Duration `mapstructure:"turn_timeout"`
	// MoveCellDelay is the walk time per grid cell; 0 selects instant moves.
	MoveCellDelay time.Duration `mapstructure:"move_cell_delay"`

	WeightLowHP       float64 `mapstructure:"weight_low_hp"`
	WeightCloser      float64 `mapstructure:"weight_closer"`
	HazardAvoidance   float64 `mapstructure:"hazard_avoidance"`
	SupportPreference float64 `mapstructure:"support_preference"`
	HealThreshold     float64 `mapstructure:"heal_threshold"`
}

// ContentConfig points at the YAML content the simulator loads.
type ContentConfig struct {
	// EffectsDir is the directory of status-effect definition files.
	EffectsDir string `mapstructure:"effects_dir"`
	// FactionsFile is the initial faction relationship matrix.
	FactionsFile string `mapstructure:"factions_file"`
}

// SimulationConfig holds simulator-only settings.
type SimulationConfig struct {
	// Seed selects a deterministic dice source when non-zero; 0 uses the
	// crypto source.
	Seed int64 `mapstructure:"seed"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Combat     CombatConfig     `mapstructure:"combat"`
	AI         AIConfig         `mapstructure:"ai"`
	Content    ContentConfig    `mapstructure:"content"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAI(c.AI); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.HitFloor < 0 || c.HitCeiling > 100 || c.HitFloor > c.HitCeiling {
		errs = append(errs, fmt.Sprintf("combat hit clamp [%d, %d] must satisfy 0 <= floor <= ceiling <= 100", c.HitFloor, c.HitCeiling))
	}
	if c.ParryCeiling < 0 || c.ParryCeiling > 100 {
		errs = append(errs, fmt.Sprintf("combat.parry_ceiling must be 0-100, got %d", c.ParryCeiling))
	}
	if c.CritCeiling < 0 || c.CritCeiling > 100 {
		errs = append(errs, fmt.Sprintf("combat.crit_ceiling must be 0-100, got %d", c.CritCeiling))
	}
	if c.CritDefenseCeiling < 0 || c.CritDefenseCeiling > 100 {
		errs = append(errs, fmt.Sprintf("combat.crit_defense_ceiling must be 0-100, got %d", c.CritDefenseCeiling))
	}
	if c.CritMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("combat.crit_multiplier must be >= 1, got %g", c.CritMultiplier))
	}
	if c.MinDamage < 0 {
		errs = append(errs, fmt.Sprintf("combat.min_damage must be >= 0, got %d", c.MinDamage))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAI(a AIConfig) error {
	var errs []string
	if a.ThinkDelay < 0 {
		errs = append(errs, "ai.think_delay must not be negative")
	}
	if a.TurnTimeout <= 0 {
		errs = append(errs, "ai.turn_timeout must be positive")
	}
	if a.MoveCellDelay < 0 {
		errs = append(errs, "ai.move_cell_delay must not be negative")
	}
	if a.SupportPreference < 0 || a.SupportPreference > 1 {
		errs = append(errs, fmt.Sprintf("ai.support_preference must be in [0, 1], got %g", a.SupportPreference))
	}
	if a.HealThreshold <= 0 || a.HealThreshold > 1 {
		errs = append(errs, fmt.Sprintf("ai.heal_threshold must be in (0, 1], got %g", a.HealThreshold))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with GRIDFALL_ prefix
	v.SetEnvPrefix("GRIDFALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("combat.base_hit", 70)
	v.SetDefault("combat.finesse_hit_factor", 2)
	v.SetDefault("combat.hit_floor", 5)
	v.SetDefault("combat.hit_ceiling", 95)
	v.SetDefault("combat.base_parry", 3)
	v.SetDefault("combat.finesse_parry_factor", 1)
	v.SetDefault("combat.parry_ceiling", 30)
	v.SetDefault("combat.base_crit", 5)
	v.SetDefault("combat.luck_crit_factor", 1)
	v.SetDefault("combat.crit_ceiling", 50)
	v.SetDefault("combat.base_crit_defense", 5)
	v.SetDefault("combat.focus_crit_defense_factor", 1)
	v.SetDefault("combat.crit_defense_ceiling", 50)
	v.SetDefault("combat.crit_multiplier", 1.5)
	v.SetDefault("combat.min_damage", 1)

	v.SetDefault("ai.think_delay", "250ms")
	v.SetDefault("ai.turn_timeout", "5s")
	v.SetDefault("ai.move_cell_delay", "0s")
	v.SetDefault("ai.weight_low_hp", 5.0)
	v.SetDefault("ai.weight_closer", 0.5)
	v.SetDefault("ai.hazard_avoidance", 1.0)
	v.SetDefault("ai.support_preference", 0.7)
	v.SetDefault("ai.heal_threshold", 0.8)

	v.SetDefault("content.effects_dir", "content/effects")
	v.SetDefault("content.factions_file", "content/factions.yaml")

	v.SetDefault("simulation.seed", 0)
}

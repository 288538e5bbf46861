package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torvik/gridfall/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestLoad_Defaults verifies an empty file yields the documented defaults.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "logging:\n  level: info\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, 70, cfg.Combat.BaseHit)
	assert.Equal(t, 2, cfg.Combat.FinesseHitFactor)
	assert.Equal(t, 5, cfg.Combat.HitFloor)
	assert.Equal(t, 95, cfg.Combat.HitCeiling)
	assert.Equal(t, 3, cfg.Combat.BaseParry)
	assert.Equal(t, 30, cfg.Combat.ParryCeiling)
	assert.Equal(t, 5, cfg.Combat.BaseCrit)
	assert.Equal(t, 50, cfg.Combat.CritCeiling)
	assert.Equal(t, 5, cfg.Combat.BaseCritDefense)
	assert.Equal(t, 50, cfg.Combat.CritDefenseCeiling)
	assert.Equal(t, 1.5, cfg.Combat.CritMultiplier)
	assert.Equal(t, 1, cfg.Combat.MinDamage)

	assert.Equal(t, 250*time.Millisecond, cfg.AI.ThinkDelay)
	assert.Equal(t, 5*time.Second, cfg.AI.TurnTimeout)
	assert.Zero(t, cfg.AI.MoveCellDelay)
	assert.Equal(t, 0.7, cfg.AI.SupportPreference)
	assert.Equal(t, 0.8, cfg.AI.HealThreshold)

	assert.Equal(t, "content/effects", cfg.Content.EffectsDir)
	assert.Equal(t, "content/factions.yaml", cfg.Content.FactionsFile)
	assert.Zero(t, cfg.Simulation.Seed)
}

// TestLoad_Overrides verifies file values replace defaults.
func TestLoad_Overrides(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
logging:
  level: debug
  format: console
combat:
  base_hit: 60
  min_damage: 2
ai:
  turn_timeout: 2s
  move_cell_delay: 40ms
simulation:
  seed: 1234
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 60, cfg.Combat.BaseHit)
	assert.Equal(t, 2, cfg.Combat.MinDamage)
	assert.Equal(t, 2*time.Second, cfg.AI.TurnTimeout)
	assert.Equal(t, 40*time.Millisecond, cfg.AI.MoveCellDelay)
	assert.Equal(t, int64(1234), cfg.Simulation.Seed)
	assert.Equal(t, 95, cfg.Combat.HitCeiling, "unset keys keep their defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"bad level", "logging:\n  level: verbose\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
		{"inverted hit clamp", "combat:\n  hit_floor: 80\n  hit_ceiling: 20\n", "hit clamp"},
		{"crit multiplier below one", "combat:\n  crit_multiplier: 0.5\n", "crit_multiplier"},
		{"negative min damage", "combat:\n  min_damage: -1\n", "min_damage"},
		{"zero turn timeout", "ai:\n  turn_timeout: 0s\n", "turn_timeout"},
		{"negative think delay", "ai:\n  think_delay: -1s\n", "think_delay"},
		{"support preference above one", "ai:\n  support_preference: 1.5\n", "support_preference"},
		{"zero heal threshold", "ai:\n  heal_threshold: 0\n", "heal_threshold"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

// TestValidate_AggregatesViolations verifies one pass reports every problem.
func TestValidate_AggregatesViolations(t *testing.T) {
	_, err := config.Load(writeConfig(t, "logging:\n  level: verbose\nai:\n  turn_timeout: 0s\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "turn_timeout")
}

// TestLoadFromViper covers the embedding path used by tools that manage their
// own Viper instance.
func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "warn")
	v.Set("logging.format", "console")
	v.Set("combat.crit_multiplier", 2.0)
	v.Set("ai.turn_timeout", "3s")
	v.Set("ai.support_preference", 0.5)
	v.Set("ai.heal_threshold", 0.6)

	cfg, err := config.LoadFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 2.0, cfg.Combat.CritMultiplier)
	assert.Equal(t, 3*time.Second, cfg.AI.TurnTimeout)
}

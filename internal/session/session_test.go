package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/torvik/gridfall/internal/config"
	"github.com/torvik/gridfall/internal/scenario"
	"github.com/torvik/gridfall/internal/session"
)

// testConfig returns a validated-shape configuration pointing at temp content.
func testConfig(t *testing.T, seed int64) config.Config {
	t.Helper()
	root := t.TempDir()
	effectsDir := filepath.Join(root, "effects")
	require.NoError(t, os.Mkdir(effectsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(effectsDir, "poisoned.yaml"),
		[]byte("id: poisoned\nname: Poisoned\ndamage_per_turn: 2\n"), 0o644))
	factions := filepath.Join(root, "factions.yaml")
	require.NoError(t, os.WriteFile(factions,
		[]byte("relationships:\n  - {a: blue, b: red, relation: hostile}\n"), 0o644))

	return config.Config{
		Logging: config.LoggingConfig{Level: "error", Format: "console"},
		Combat: config.CombatConfig{
			BaseHit: 70, FinesseHitFactor: 2, HitFloor: 5, HitCeiling: 95,
			BaseParry: 3, FinesseParryFactor: 1, ParryCeiling: 30,
			BaseCrit: 5, LuckCritFactor: 1, CritCeiling: 50,
			BaseCritDefense: 5, FocusCritDefenseFactor: 1, CritDefenseCeiling: 50,
			CritMultiplier: 1.5, MinDamage: 1,
		},
		AI: config.AIConfig{
			TurnTimeout:       2 * time.Second,
			WeightLowHP:       5.0,
			WeightCloser:      0.5,
			HazardAvoidance:   1.0,
			SupportPreference: 0.7,
			HealThreshold:     0.8,
		},
		Content: config.ContentConfig{
			EffectsDir:   effectsDir,
			FactionsFile: factions,
		},
		Simulation: config.SimulationConfig{Seed: seed},
	}
}

func duelScenario() *scenario.Scenario {
	unit := func(name, faction string, x int) scenario.UnitDef {
		return scenario.UnitDef{
			Name:       name,
			Faction:    faction,
			Behavior:   "berserker",
			Position:   scenario.CellDef{X: x, Y: 2},
			MoveBudget: 3,
			Stats:      scenario.StatsDef{MaxHP: 12, Attack: 3, Speed: 5},
			Weapon:     scenario.WeaponDef{Name: "blade", Family: "blade", Damage: "1d4", Reach: 1},
		}
	}
	a := unit("Alicia", "blue", 2)
	b := unit("Borin", "red", 3)
	b.Stats.Speed = 4
	return &scenario.Scenario{
		Name:  "duel",
		Board: scenario.BoardDef{Width: 8, Height: 6},
		Encounter: scenario.EncounterDef{
			PlayerFaction: "blue",
			Victory:       "kill_all",
			RoundLimit:    40,
			Autopilot:     true,
		},
		Units: []scenario.UnitDef{a, b},
	}
}

// TestSession_SeededDuelRunsToCompletion drives a full autopiloted battle
// through the real wiring: content loading, scenario build, engine, executor,
// behaviors, and sequencer. The round limit bounds the battle even under a
// pathological seed.
func TestSession_SeededDuelRunsToCompletion(t *testing.T) {
	sess, err := session.New(testConfig(t, 42), duelScenario(), zap.NewNop())
	require.NoError(t, err)
	defer sess.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := sess.Run(ctx)
	require.NoError(t, err, "the battle must finish before the context deadline")
	assert.GreaterOrEqual(t, result.Rounds, 1)
	assert.LessOrEqual(t, result.Rounds, 40)

	alive := 0
	for _, u := range sess.Units() {
		if u.Alive() {
			alive++
		}
	}
	if result.Rounds < 40 {
		assert.Less(t, alive, 2, "a kill_all finish before the round limit means a death")
	}
}

// TestSession_SameSeedSameOutcome pins simulation reproducibility.
func TestSession_SameSeedSameOutcome(t *testing.T) {
	run := func() session.Result {
		sess, err := session.New(testConfig(t, 7), duelScenario(), zap.NewNop())
		require.NoError(t, err)
		defer sess.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result, err := sess.Run(ctx)
		require.NoError(t, err)
		return result
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

// TestSession_CancelledRunStops verifies cancellation tears the battle down.
func TestSession_CancelledRunStops(t *testing.T) {
	cfg := testConfig(t, 3)
	// A long think delay keeps the battle in flight when we cancel.
	cfg.AI.ThinkDelay = time.Hour
	sess, err := session.New(cfg, duelScenario(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := sess.Run(ctx)
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

// TestSession_BadContentSurfacesErrors verifies wiring failures return errors
// instead of a half-built session.
func TestSession_BadContentSurfacesErrors(t *testing.T) {
	cfg := testConfig(t, 1)
	cfg.Content.EffectsDir = filepath.Join(t.TempDir(), "absent")
	_, err := session.New(cfg, duelScenario(), zap.NewNop())
	assert.Error(t, err)
}

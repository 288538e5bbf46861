package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/torvik/gridfall/internal/game/combat"
	"github.com/torvik/gridfall/internal/game/dice"
	"github.com/torvik/gridfall/internal/game/grid"
)

// recordingSink captures the events the executor raises.
type recordingSink struct {
	damaged []int
	healed  []int
	died    []string
}

func (s *recordingSink) UnitDamaged(unit *combat.Combatant, oldHP, newHP int) {
	s.damaged = append(s.damaged, oldHP-newHP)
}

func (s *recordingSink) UnitHealed(unit *combat.Combatant, oldHP, newHP int) {
	s.healed = append(s.healed, newHP-oldHP)
}

func (s *recordingSink) UnitDied(unit *combat.Combatant) {
	s.died = append(s.died, unit.Name)
}

func newExecutor(draws []int, sink combat.EventSink) *combat.Executor {
	roller := dice.NewLoggedRoller(&scriptedSource{draws: draws}, zap.NewNop())
	return combat.NewExecutor(roller, combat.DefaultTuning(), zap.NewNop(), sink)
}

func sword() combat.Weapon {
	return combat.Weapon{Name: "sword", Family: combat.FamilyBlade, Damage: dice.MustParse("1d4"), Reach: 1}
}

// TestExecutor_Attack walks a plain landed hit: one damage die, the four
// resolution draws, HP mutation, and the damage notification.
func TestExecutor_Attack(t *testing.T) {
	attacker := newUnit("a", "red", combat.Stats{MaxHP: 30, Attack: 5})
	target := newUnit("t", "blue", combat.Stats{MaxHP: 20, Defense: 2})
	target.Pos = grid.Cell{X: 1, Y: 0}

	sink := &recordingSink{}
	// d4 roll of 4, then hit, no parry, no crit, crit-defense draw.
	exec := newExecutor([]int{3, 10, 50, 99, 50}, sink)

	res, err := exec.Attack(attacker, target, sword())
	require.NoError(t, err)
	require.True(t, res.Hit)
	assert.Equal(t, 7, res.FinalDamage, "(4 + attack 5) - defense 2")
	assert.Equal(t, 13, target.HP)
	assert.Equal(t, []int{7}, sink.damaged)
	assert.Empty(t, sink.died)
	assert.True(t, attacker.Acted)
}

// TestExecutor_AttackKills verifies the death notification fires when damage
// empties the target's HP.
func TestExecutor_AttackKills(t *testing.T) {
	attacker := newUnit("a", "red", combat.Stats{MaxHP: 30, Attack: 5})
	target := newUnit("t", "blue", combat.Stats{MaxHP: 5, Defense: 2})
	target.Pos = grid.Cell{X: 1, Y: 1}

	sink := &recordingSink{}
	exec := newExecutor([]int{3, 10, 50, 99, 50}, sink)

	_, err := exec.Attack(attacker, target, sword())
	require.NoError(t, err)
	assert.Zero(t, target.HP)
	assert.Equal(t, []string{"t"}, sink.died)
}

func TestExecutor_AttackValidation(t *testing.T) {
	sink := &recordingSink{}
	exec := newExecutor([]int{0}, sink)

	alive := newUnit("a", "red", combat.Stats{MaxHP: 30})
	dead := newUnit("d", "blue", combat.Stats{MaxHP: 10})
	dead.HP = 0
	far := newUnit("f", "blue", combat.Stats{MaxHP: 10})
	far.Pos = grid.Cell{X: 5, Y: 5}

	_, err := exec.Attack(nil, alive, sword())
	assert.Error(t, err, "nil attacker")
	_, err = exec.Attack(dead, alive, sword())
	assert.Error(t, err, "dead attacker")
	_, err = exec.Attack(alive, dead, sword())
	assert.Error(t, err, "dead target")
	_, err = exec.Attack(alive, far, sword())
	assert.Error(t, err, "target out of reach")
	assert.Empty(t, sink.damaged, "rejected attacks must not change state")
}

// TestExecutor_Support verifies healing lands, is capped, and notifies.
func TestExecutor_Support(t *testing.T) {
	actor := newUnit("healer", "blue", combat.Stats{MaxHP: 20})
	actor.Skill = &combat.SupportSkill{Name: "field dressing", Healing: dice.MustParse("1d6+2"), Range: 3}
	ally := newUnit("ally", "blue", combat.Stats{MaxHP: 20})
	ally.HP = 10
	ally.Pos = grid.Cell{X: 2, Y: 1}

	sink := &recordingSink{}
	exec := newExecutor([]int{3}, sink) // d6 roll of 4, +2 = 6

	healed, err := exec.Support(actor, ally)
	require.NoError(t, err)
	assert.Equal(t, 6, healed)
	assert.Equal(t, 16, ally.HP)
	assert.Equal(t, []int{6}, sink.healed)
	assert.True(t, actor.Acted)
}

func TestExecutor_SupportCapsAtMax(t *testing.T) {
	actor := newUnit("healer", "blue", combat.Stats{MaxHP: 20})
	actor.Skill = &combat.SupportSkill{Name: "field dressing", Healing: dice.MustParse("1d6+2"), Range: 3}
	ally := newUnit("ally", "blue", combat.Stats{MaxHP: 20})
	ally.HP = 18
	ally.Pos = grid.Cell{X: 1, Y: 1}

	sink := &recordingSink{}
	exec := newExecutor([]int{5}, sink)

	healed, err := exec.Support(actor, ally)
	require.NoError(t, err)
	assert.Equal(t, 2, healed, "healing caps at max HP")
	assert.Equal(t, 20, ally.HP)
}

func TestExecutor_SupportValidation(t *testing.T) {
	sink := &recordingSink{}
	exec := newExecutor([]int{0}, sink)

	plain := newUnit("plain", "blue", combat.Stats{MaxHP: 20})
	healer := newUnit("healer", "blue", combat.Stats{MaxHP: 20})
	healer.Skill = &combat.SupportSkill{Name: "field dressing", Healing: dice.MustParse("1d6"), Range: 2}
	dead := newUnit("dead", "blue", combat.Stats{MaxHP: 20})
	dead.HP = 0
	far := newUnit("far", "blue", combat.Stats{MaxHP: 20})
	far.HP = 5
	far.Pos = grid.Cell{X: 6, Y: 6}

	_, err := exec.Support(plain, healer)
	assert.Error(t, err, "no support skill")
	_, err = exec.Support(healer, dead)
	assert.Error(t, err, "dead ally")
	_, err = exec.Support(healer, far)
	assert.Error(t, err, "ally out of range")
	assert.Empty(t, sink.healed)
}

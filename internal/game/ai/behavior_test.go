package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torvik/gridfall/internal/game/ai"
	"github.com/torvik/gridfall/internal/game/combat"
	"github.com/torvik/gridfall/internal/game/dice"
	"github.com/torvik/gridfall/internal/game/faction"
	"github.com/torvik/gridfall/internal/game/grid"
)

// scriptedSource replays fixed draws for the stochastic support gate.
type scriptedSource struct {
	draws []int
	i     int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.draws[s.i%len(s.draws)]
	s.i++
	return v % n
}

func newUnit(name, factionTag string, hp, maxHP int, pos grid.Cell) *combat.Combatant {
	u := combat.New(name, factionTag, combat.Stats{MaxHP: maxHP}, pos, 4)
	u.HP = hp
	u.Weapon = combat.Weapon{Name: "sword", Family: combat.FamilyBlade, Damage: dice.MustParse("1d6"), Reach: 1}
	return u
}

func warFactions() *faction.Resolver {
	r := faction.NewResolver()
	r.Set("blue", "red", faction.Hostile)
	return r
}

func openBoard(t *testing.T) *grid.Board {
	t.Helper()
	b, err := grid.NewBoard(12, 12)
	require.NoError(t, err)
	return b
}

func newBehavior(t *testing.T, kind ai.Kind, board *grid.Board, draws ...int) ai.Behavior {
	t.Helper()
	if len(draws) == 0 {
		draws = []int{0}
	}
	return ai.New(kind, warFactions(), board, &scriptedSource{draws: draws}, ai.DefaultTunables())
}

func TestParseKind(t *testing.T) {
	for _, kind := range []ai.Kind{ai.Berserker, ai.Support, ai.Coward, ai.Protector} {
		parsed, err := ai.ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	_, err := ai.ParseKind("pacifist")
	assert.Error(t, err)
}

// TestBerserker_ChooseTarget_PrefersWounded verifies the low-HP weight can
// outweigh distance.
func TestBerserker_ChooseTarget_PrefersWounded(t *testing.T) {
	b := newBehavior(t, ai.Berserker, openBoard(t))
	self := newUnit("self", "blue", 10, 10, grid.Cell{X: 0, Y: 0})
	near := newUnit("near", "red", 10, 10, grid.Cell{X: 1, Y: 0})
	wounded := newUnit("wounded", "red", 2, 10, grid.Cell{X: 5, Y: 0})

	target := b.ChooseTarget(self, []*combat.Combatant{self, near, wounded})
	require.NotNil(t, target)
	assert.Equal(t, "wounded", target.Name)
}

// TestBerserker_ChooseTarget_IgnoresAlliesAndDead verifies target filtering.
func TestBerserker_ChooseTarget_IgnoresAlliesAndDead(t *testing.T) {
	b := newBehavior(t, ai.Berserker, openBoard(t))
	self := newUnit("self", "blue", 10, 10, grid.Cell{X: 0, Y: 0})
	ally := newUnit("ally", "blue", 1, 10, grid.Cell{X: 1, Y: 0})
	corpse := newUnit("corpse", "red", 0, 10, grid.Cell{X: 2, Y: 0})

	assert.Nil(t, b.ChooseTarget(self, []*combat.Combatant{self, ally, corpse}),
		"no valid target when only allies and the dead remain")
}

func TestBerserker_ChooseAction(t *testing.T) {
	b := newBehavior(t, ai.Berserker, openBoard(t))
	self := newUnit("self", "blue", 10, 10, grid.Cell{X: 0, Y: 0})
	adjacent := newUnit("adjacent", "red", 10, 10, grid.Cell{X: 1, Y: 1})
	far := newUnit("far", "red", 10, 10, grid.Cell{X: 6, Y: 0})

	assert.Equal(t, ai.ActionMeleeAttack, b.ChooseAction(self, adjacent))
	assert.Equal(t, ai.ActionMove, b.ChooseAction(self, far))

	self.Weapon.Reach = 4
	assert.Equal(t, ai.ActionRangedSkill, b.ChooseAction(self, newUnit("mid", "red", 10, 10, grid.Cell{X: 3, Y: 0})))
}

// TestBerserker_EvaluateBestMove_ClosesDistance verifies movement scoring
// walks toward the target.
func TestBerserker_EvaluateBestMove_ClosesDistance(t *testing.T) {
	board := openBoard(t)
	b := newBehavior(t, ai.Berserker, board)
	self := newUnit("self", "blue", 10, 10, grid.Cell{X: 0, Y: 0})
	target := newUnit("target", "red", 10, 10, grid.Cell{X: 6, Y: 0})

	dest, wants := b.EvaluateBestMove(self, target, board.ReachableCells(self.Pos, 4))
	require.True(t, wants)
	assert.Less(t, dest.Chebyshev(target.Pos), self.Pos.Chebyshev(target.Pos))
}

// TestBerserker_EvaluateBestMove_AvoidsHazards verifies the hazard penalty
// dominates the closing score.
func TestBerserker_EvaluateBestMove_AvoidsHazards(t *testing.T) {
	board := openBoard(t)
	b := newBehavior(t, ai.Berserker, board)
	self := newUnit("self", "blue", 10, 10, grid.Cell{X: 0, Y: 0})
	target := newUnit("target", "red", 10, 10, grid.Cell{X: 8, Y: 0})

	// Poison every forward cell except one detour row.
	for x := 1; x <= 4; x++ {
		board.AddHazard(grid.Cell{X: x, Y: 0}, grid.Hazard{Name: "fire", Damage: 3, RoundsLeft: -1})
	}

	dest, wants := b.EvaluateBestMove(self, target, board.ReachableCells(self.Pos, 4))
	require.True(t, wants)
	_, hazardous := board.HazardAt(dest)
	assert.False(t, hazardous, "the chosen cell must not carry a hazard")
}

func TestCoward_NeverAdvancesToEngage(t *testing.T) {
	board := openBoard(t)
	b := newBehavior(t, ai.Coward, board)
	self := newUnit("self", "red", 10, 10, grid.Cell{X: 5, Y: 5})
	far := newUnit("far", "blue", 10, 10, grid.Cell{X: 9, Y: 5})

	assert.Equal(t, ai.ActionWait, b.ChooseAction(self, far),
		"a coward does not close distance to attack")

	adjacent := newUnit("adjacent", "blue", 10, 10, grid.Cell{X: 6, Y: 5})
	assert.Equal(t, ai.ActionMeleeAttack, b.ChooseAction(self, adjacent),
		"but it will hit a target already in reach")
}

func TestCoward_EvaluateBestMove_Retreats(t *testing.T) {
	board := openBoard(t)
	b := newBehavior(t, ai.Coward, board)
	self := newUnit("self", "red", 10, 10, grid.Cell{X: 5, Y: 5})
	threat := newUnit("threat", "blue", 10, 10, grid.Cell{X: 6, Y: 5})

	dest, wants := b.EvaluateBestMove(self, threat, board.ReachableCells(self.Pos, 3))
	require.True(t, wants)
	assert.Greater(t, dest.Chebyshev(threat.Pos), self.Pos.Chebyshev(threat.Pos))
}

// TestSupport_HealsMostWoundedAlly verifies the ally gate and the worst-HP
// pick.
func TestSupport_HealsMostWoundedAlly(t *testing.T) {
	board := openBoard(t)
	// Gate draw 0 always passes the support-preference check.
	b := newBehavior(t, ai.Support, board, 0)
	self := newUnit("self", "blue", 10, 10, grid.Cell{X: 0, Y: 0})
	self.Skill = &combat.SupportSkill{Name: "mend", Healing: dice.MustParse("1d6"), Range: 3}
	bruised := newUnit("bruised", "blue", 7, 10, grid.Cell{X: 1, Y: 0})
	critical := newUnit("critical", "blue", 2, 10, grid.Cell{X: 2, Y: 0})
	enemy := newUnit("enemy", "red", 10, 10, grid.Cell{X: 5, Y: 0})

	target := b.ChooseTarget(self, []*combat.Combatant{self, bruised, critical, enemy})
	require.NotNil(t, target)
	assert.Equal(t, "critical", target.Name)
	assert.Equal(t, ai.ActionSupport, b.ChooseAction(self, target))
}

// TestSupport_FallsBackToEnemies verifies healthy parties turn the healer
// into a skirmisher.
func TestSupport_FallsBackToEnemies(t *testing.T) {
	board := openBoard(t)
	b := newBehavior(t, ai.Support, board, 0)
	self := newUnit("self", "blue", 10, 10, grid.Cell{X: 0, Y: 0})
	self.Skill = &combat.SupportSkill{Name: "mend", Healing: dice.MustParse("1d6"), Range: 3}
	healthy := newUnit("healthy", "blue", 10, 10, grid.Cell{X: 1, Y: 0})
	enemy := newUnit("enemy", "red", 10, 10, grid.Cell{X: 5, Y: 0})

	target := b.ChooseTarget(self, []*combat.Combatant{self, healthy, enemy})
	require.NotNil(t, target)
	assert.Equal(t, "enemy", target.Name, "no ally below the heal threshold")
}

// TestSupport_GateFailureSkipsAllies verifies a failed preference draw goes
// straight to enemy scoring.
func TestSupport_GateFailureSkipsAllies(t *testing.T) {
	board := openBoard(t)
	// Gate draw 99 always fails the 70% support preference.
	b := newBehavior(t, ai.Support, board, 99)
	self := newUnit("self", "blue", 10, 10, grid.Cell{X: 0, Y: 0})
	self.Skill = &combat.SupportSkill{Name: "mend", Healing: dice.MustParse("1d6"), Range: 3}
	critical := newUnit("critical", "blue", 1, 10, grid.Cell{X: 1, Y: 0})
	enemy := newUnit("enemy", "red", 10, 10, grid.Cell{X: 5, Y: 0})

	target := b.ChooseTarget(self, []*combat.Combatant{self, critical, enemy})
	require.NotNil(t, target)
	assert.Equal(t, "enemy", target.Name)
}

// TestProtector_InterceptsThreatNearWard verifies the protector anchors its
// targeting on its most wounded ally.
func TestProtector_InterceptsThreatNearWard(t *testing.T) {
	board := openBoard(t)
	b := newBehavior(t, ai.Protector, board)
	self := newUnit("self", "blue", 10, 10, grid.Cell{X: 0, Y: 0})
	ward := newUnit("ward", "blue", 3, 10, grid.Cell{X: 8, Y: 8})
	nearSelf := newUnit("near-self", "red", 10, 10, grid.Cell{X: 1, Y: 0})
	nearWard := newUnit("near-ward", "red", 10, 10, grid.Cell{X: 8, Y: 7})

	target := b.ChooseTarget(self, []*combat.Combatant{self, ward, nearSelf, nearWard})
	require.NotNil(t, target)
	assert.Equal(t, "near-ward", target.Name,
		"the hostile closest to the ward wins even when another is closer to self")
}

// Package dice provides the randomness abstraction and roll-result types for
// the Gridfall combat core. All stochastic resolution (hit, parry, critical,
// weapon damage) draws through a Source so tests and replays can substitute a
// deterministic generator.
package dice

import "fmt"

// Source is the randomness provider for all combat rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Percent draws a uniform value in [0, 100) from src.
//
// The combat resolver compares these draws against chance values clamped to
// at most 95, so a draw of 99 always misses and a draw of 0 always lands.
func Percent(src Source) int {
	return src.Intn(100)
}

// RollResult holds the audit trail for a single damage-expression roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string, e.g. "2d6+3 → [4 5] +3 = 12".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

package turn

import "github.com/torvik/gridfall/internal/game/grid"

// VictoryKind selects how the encounter ends.
type VictoryKind int

const (
	// KillAll ends in victory when no faction hostile to the player faction
	// has living units, and in defeat when the player faction has none.
	KillAll VictoryKind = iota
	// SurviveRounds ends in victory once the round counter passes the
	// configured count, and in defeat when the player faction is wiped first.
	SurviveRounds
	// ProtectTarget is evaluated with KillAll semantics. Richer semantics are
	// an intentional stub upstream.
	ProtectTarget
	// ReachLocation is evaluated with KillAll semantics, like ProtectTarget.
	ReachLocation
)

// String returns the victory condition label.
func (v VictoryKind) String() string {
	switch v {
	case KillAll:
		return "kill_all"
	case SurviveRounds:
		return "survive_rounds"
	case ProtectTarget:
		return "protect_target"
	case ReachLocation:
		return "reach_location"
	default:
		return "unknown"
	}
}

// EncounterConfig is the read-only victory configuration for one battle.
type EncounterConfig struct {
	// PlayerFaction is the faction whose windows wait for external action
	// requests; every other faction is AI-driven.
	PlayerFaction string
	// Victory selects the end condition.
	Victory VictoryKind
	// Rounds is the survival count for SurviveRounds.
	Rounds int
	// RoundLimit optionally caps battle length; exceeding it ends the battle
	// in defeat. 0 disables the cap.
	RoundLimit int
	// AutopilotPlayer hands player-faction windows to the AI driver as well,
	// for headless simulation.
	AutopilotPlayer bool
}

// HazardService is the board-hazard collaborator contract.
type HazardService interface {
	// TickRoundHazards advances hazard durations by one round and returns
	// the cells whose hazards expired.
	TickRoundHazards() []grid.Cell
	// HazardAt returns the occupancy damage for cell, or (0, false) when the
	// cell is clear.
	HazardAt(cell grid.Cell) (int, bool)
}

// noHazards is the null HazardService used when no board is attached.
type noHazards struct{}

func (noHazards) TickRoundHazards() []grid.Cell  { return nil }
func (noHazards) HazardAt(grid.Cell) (int, bool) { return 0, false }

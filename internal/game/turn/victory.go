package turn

import "go.uber.org/zap"

// evaluateVictoryLocked checks the configured victory condition, transitions
// to CombatOver when it is met, and returns whether the battle is over. The
// combat-ended notification is raised exactly once no matter how often this
// runs.
func (e *Engine) evaluateVictoryLocked() bool {
	if e.over {
		return true
	}
	if e.state == NotStarted {
		return false
	}

	playerAlive := e.factionAliveLocked(e.cfg.PlayerFaction)

	var over, victory bool
	switch e.cfg.Victory {
	case SurviveRounds:
		switch {
		case !playerAlive:
			over, victory = true, false
		case e.round > e.cfg.Rounds:
			over, victory = true, true
		}
	case ProtectTarget, ReachLocation:
		if !e.stubWarned {
			e.stubWarned = true
			e.log.Warn("victory condition is a stub, evaluating as kill_all",
				zap.String("victory", e.cfg.Victory.String()))
		}
		over, victory = e.killAllLocked(playerAlive)
	default:
		over, victory = e.killAllLocked(playerAlive)
	}

	if !over && e.cfg.RoundLimit > 0 && e.round > e.cfg.RoundLimit {
		over, victory = true, false
		e.log.Info("round limit reached", zap.Int("limit", e.cfg.RoundLimit))
	}

	if over {
		e.over = true
		e.victory = victory
		e.state = CombatOver
		e.log.Info("combat ended",
			zap.Bool("player_victory", victory),
			zap.Int("round", e.round))
		e.notifier.Publish(CombatEnded{Victory: victory})
	}
	return e.over
}

// killAllLocked evaluates KillAll semantics: defeat when the player faction
// has no living units; victory when, with at least one player unit alive, no
// living unit belongs to a faction hostile toward the player faction.
func (e *Engine) killAllLocked(playerAlive bool) (over, victory bool) {
	if !playerAlive {
		return true, false
	}
	for _, u := range e.order {
		if u.Alive() && e.hostile.IsHostile(e.cfg.PlayerFaction, u.Faction) {
			return false, false
		}
	}
	return true, true
}

func (e *Engine) factionAliveLocked(faction string) bool {
	for _, u := range e.order {
		if u.Alive() && u.Faction == faction {
			return true
		}
	}
	return false
}

package service

import (
	"character-game-server/internal/config"
	"character-game-server/internal/leveling"
	"character-game-server/shared/models"
)

// levelUpOutcome - результат наложения дельты опыта на состояние прогрессии.
type levelUpOutcome struct {
	LeveledUp      bool
	NewLevel       int
	BonusPoints    int
	UnlockedBadges []string
}

// applyExperience накладывает опыт и очки на состояние и проводит пересечение
// уровней: бонусные очки и значки за каждый пересеченный уровень начисляются
// ровно один раз, каким бы путем ни пришел опыт (завершение события или
// health score). Состояние изменяется на месте, запись в стор - на вызывающем.
func applyExperience(state *models.ProgressionState, expDelta, pointsDelta int, rules *config.GameRules) levelUpOutcome {
	oldTotal := state.TotalExperience
	state.TotalExperience += expDelta
	state.Points += pointsDelta

	var out levelUpOutcome
	leveledUp, newLevel := leveling.DetectLevelUp(oldTotal, state.TotalExperience)
	if !leveledUp {
		return out
	}

	out.LeveledUp = true
	out.NewLevel = newLevel
	out.BonusPoints = rules.LevelUpBonusPoints
	state.Points += rules.LevelUpBonusPoints

	// Одноразовые коллекционные награды за пересеченные уровни
	oldLevel := leveling.LevelOf(oldTotal).Level
	for _, unlock := range rules.BadgeUnlocks {
		if unlock.Level > oldLevel && unlock.Level <= newLevel && !state.HasBadge(unlock.Badge) {
			state.Badges = append(state.Badges, unlock.Badge)
			out.UnlockedBadges = append(out.UnlockedBadges, unlock.Badge)
		}
	}
	return out
}

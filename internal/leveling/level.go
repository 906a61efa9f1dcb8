// Package leveling derives character levels from accumulated experience.
// Everything here is a pure function: the stored source of truth is the
// experience total, level numbers are always recomputed.
package leveling

import "math"

// LevelInfo describes where a given experience total lands.
type LevelInfo struct {
	Level          int `json:"level"`
	ExpInLevel     int `json:"exp_in_level"`
	ExpToNextLevel int `json:"exp_to_next_level"`
}

// ExpRequiredForLevel returns the experience cost of a single level.
// Linear growth: level n costs n*100.
func ExpRequiredForLevel(level int) int {
	if level < 1 {
		return 0
	}
	return level * 100
}

// LevelOf greedily consumes per-level chunks starting at level 1 until the
// remainder no longer covers the next chunk. Levels stay small in practice,
// so the loop is fine; do not replace with a closed form unless the output
// matches for every non-negative total.
func LevelOf(totalExp int) LevelInfo {
	if totalExp < 0 {
		totalExp = 0
	}

	level := 1
	remaining := totalExp
	for remaining >= ExpRequiredForLevel(level) {
		remaining -= ExpRequiredForLevel(level)
		level++
	}

	return LevelInfo{
		Level:          level,
		ExpInLevel:     remaining,
		ExpToNextLevel: ExpRequiredForLevel(level),
	}
}

// ExperienceFromHealthScore converts a health score into experience for
// progression paths not driven by game events: floor(score * 10).
func ExperienceFromHealthScore(healthScore float64) int {
	if healthScore <= 0 {
		return 0
	}
	return int(math.Floor(healthScore * 10))
}

// DetectLevelUp compares the levels of two experience totals.
// Returns (true, newLevel) when newTotal crosses at least one threshold.
func DetectLevelUp(oldTotal, newTotal int) (bool, int) {
	oldLevel := LevelOf(oldTotal).Level
	newLevel := LevelOf(newTotal).Level
	return newLevel > oldLevel, newLevel
}

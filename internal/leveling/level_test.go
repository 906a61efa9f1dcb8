package leveling_test

import (
	"testing"

	"character-game-server/internal/leveling"

	"github.com/stretchr/testify/assert"
)

func TestLevelOf(t *testing.T) {
	t.Run("Zero experience is level 1", func(t *testing.T) {
		info := leveling.LevelOf(0)
		assert.Equal(t, 1, info.Level)
		assert.Equal(t, 0, info.ExpInLevel)
		assert.Equal(t, 100, info.ExpToNextLevel)
	})

	t.Run("250 exp lands mid level 2", func(t *testing.T) {
		// Уровень 1 стоит 100, уровень 2 стоит 200: 250-100=150 < 200
		info := leveling.LevelOf(250)
		assert.Equal(t, 2, info.Level)
		assert.Equal(t, 150, info.ExpInLevel)
		assert.Equal(t, 200, info.ExpToNextLevel)
	})

	t.Run("Exact boundary rolls into the next level", func(t *testing.T) {
		// 100 закрывает уровень 1 полностью
		info := leveling.LevelOf(100)
		assert.Equal(t, 2, info.Level)
		assert.Equal(t, 0, info.ExpInLevel)
		assert.Equal(t, 200, info.ExpToNextLevel)

		// 100+200 закрывает и уровень 2
		info = leveling.LevelOf(300)
		assert.Equal(t, 3, info.Level)
		assert.Equal(t, 0, info.ExpInLevel)
		assert.Equal(t, 300, info.ExpToNextLevel)
	})

	t.Run("Negative totals clamp to zero", func(t *testing.T) {
		info := leveling.LevelOf(-42)
		assert.Equal(t, 1, info.Level)
		assert.Equal(t, 0, info.ExpInLevel)
	})

	t.Run("Level is monotonic over non-negative deltas", func(t *testing.T) {
		deltas := []int{0, 5, 10, 30, 30, 100, 0, 250, 999}
		total := 0
		prevLevel := leveling.LevelOf(total).Level
		for _, d := range deltas {
			total += d
			level := leveling.LevelOf(total).Level
			assert.GreaterOrEqual(t, level, prevLevel)
			prevLevel = level
		}
	})
}

func TestExpRequiredForLevel(t *testing.T) {
	assert.Equal(t, 100, leveling.ExpRequiredForLevel(1))
	assert.Equal(t, 200, leveling.ExpRequiredForLevel(2))
	assert.Equal(t, 1000, leveling.ExpRequiredForLevel(10))
	assert.Equal(t, 0, leveling.ExpRequiredForLevel(0))
	assert.Equal(t, 0, leveling.ExpRequiredForLevel(-3))
}

func TestExperienceFromHealthScore(t *testing.T) {
	assert.Equal(t, 85, leveling.ExperienceFromHealthScore(8.5))
	assert.Equal(t, 10, leveling.ExperienceFromHealthScore(1.0))
	assert.Equal(t, 7, leveling.ExperienceFromHealthScore(0.79))
	assert.Equal(t, 0, leveling.ExperienceFromHealthScore(0))
	assert.Equal(t, 0, leveling.ExperienceFromHealthScore(-3.2))
}

func TestDetectLevelUp(t *testing.T) {
	t.Run("Crossing a threshold", func(t *testing.T) {
		leveled, newLevel := leveling.DetectLevelUp(90, 120)
		assert.True(t, leveled)
		assert.Equal(t, 2, newLevel)
	})

	t.Run("Staying inside a level", func(t *testing.T) {
		leveled, newLevel := leveling.DetectLevelUp(110, 150)
		assert.False(t, leveled)
		assert.Equal(t, 2, newLevel)
	})

	t.Run("Crossing several thresholds at once", func(t *testing.T) {
		leveled, newLevel := leveling.DetectLevelUp(0, 300)
		assert.True(t, leveled)
		assert.Equal(t, 3, newLevel)
	})
}

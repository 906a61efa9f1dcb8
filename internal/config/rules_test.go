package config

import (
	"testing"

	"character-game-server/shared/models"

	"github.com/stretchr/testify/assert"
)

func TestRewardFor_FallsBackToPriorityTable(t *testing.T) {
	rules := DefaultGameRules()

	assert.Equal(t, Reward{Experience: 30, Points: 15}, rules.RewardFor(models.EventTypeMedication, models.PriorityUrgent))
	assert.Equal(t, Reward{Experience: 20, Points: 10}, rules.RewardFor(models.EventTypeBabyFeeding, models.PriorityHigh))
	assert.Equal(t, Reward{Experience: 10, Points: 5}, rules.RewardFor(models.EventTypeHealthCheckup, models.PriorityNormal))
	assert.Equal(t, Reward{Experience: 5, Points: 2}, rules.RewardFor(models.EventTypeLifecycleEvent, models.PriorityLow))
}

func TestRewardFor_OverrideWinsForMatchingTypeAndPriority(t *testing.T) {
	rules := DefaultGameRules()
	rules.RewardOverrides = []RewardOverride{
		{EventType: models.EventTypeKCDCAlert, Priority: models.PriorityUrgent, Experience: 40, Points: 20},
	}

	// Совпадение по обоим ключам
	assert.Equal(t, Reward{Experience: 40, Points: 20}, rules.RewardFor(models.EventTypeKCDCAlert, models.PriorityUrgent))

	// Тот же приоритет, но другой тип - остается общая таблица
	assert.Equal(t, Reward{Experience: 30, Points: 15}, rules.RewardFor(models.EventTypeMedication, models.PriorityUrgent))

	// Тот же тип, но другой приоритет - остается общая таблица
	assert.Equal(t, Reward{Experience: 10, Points: 5}, rules.RewardFor(models.EventTypeKCDCAlert, models.PriorityNormal))
}

func TestRewardFor_UnknownPriorityIsZero(t *testing.T) {
	rules := DefaultGameRules()

	assert.Equal(t, Reward{}, rules.RewardFor(models.EventTypeMedication, models.EventPriority("mystery")))
}

package service

import (
	"context"
	"testing"
	"time"

	"character-game-server/internal/config"
	"character-game-server/shared/interfaces/mocks"
	"character-game-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestApplyInteraction_Deltas(t *testing.T) {
	rules := &config.DefaultGameRules().Intimacy
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		interaction models.InteractionType
		expected    int
	}{
		{models.InteractionHealthHelp, 10},
		{models.InteractionChallengeParticipation, 5},
		{models.InteractionDailyInteraction, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.interaction), func(t *testing.T) {
			update, err := ApplyInteraction(0, tt.interaction, rules, at)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, update.IntimacyScore)
			assert.Equal(t, at, update.LastInteractionAt)
		})
	}
}

func TestApplyInteraction_ClampsAtMaxScore(t *testing.T) {
	rules := &config.DefaultGameRules().Intimacy
	at := time.Now()

	update, err := ApplyInteraction(95, models.InteractionHealthHelp, rules, at)

	assert.NoError(t, err)
	assert.Equal(t, 100, update.IntimacyScore)

	// Повторное применение на максимуме ничего не меняет
	update, err = ApplyInteraction(update.IntimacyScore, models.InteractionHealthHelp, rules, at)
	assert.NoError(t, err)
	assert.Equal(t, 100, update.IntimacyScore)
}

func TestApplyInteraction_UnknownType(t *testing.T) {
	rules := &config.DefaultGameRules().Intimacy

	_, err := ApplyInteraction(0, models.InteractionType("hug"), rules, time.Now())

	assert.ErrorIs(t, err, ErrUnknownInteractionType)
}

func TestApplyInteraction_LevelThresholds(t *testing.T) {
	rules := &config.DefaultGameRules().Intimacy

	tests := []struct {
		current       int
		expectedLevel int
	}{
		{0, 1},   // 0+10=10, ниже порога 20
		{10, 2},  // 20: ровно на пороге
		{55, 4},  // 65: пороги 0/20/40/60
		{90, 5},  // зажато на 100, последний порог 80
	}

	for _, tt := range tests {
		update, err := ApplyInteraction(tt.current, models.InteractionHealthHelp, rules, time.Now())
		assert.NoError(t, err)
		assert.Equal(t, tt.expectedLevel, update.IntimacyLevel, "current=%d", tt.current)
	}
}

func TestRecordInteraction_CreatesStateOnFirstInteraction(t *testing.T) {
	intimacy := new(mocks.IntimacyRepository)
	svc := NewIntimacyService(intimacy, config.DefaultGameRules(), zap.NewNop())

	userID := uuid.New()
	memberID := uuid.New()

	intimacy.On("Get", mock.Anything, userID, memberID).Return(nil, models.ErrStateNotFound)
	intimacy.On("Upsert", mock.Anything, mock.MatchedBy(func(s *models.IntimacyState) bool {
		return s.IntimacyScore == 10 && s.IntimacyLevel == 1 && s.LastInteractionAt != nil
	})).Return(nil)

	state, err := svc.RecordInteraction(context.Background(), userID, memberID, models.InteractionHealthHelp)

	assert.NoError(t, err)
	assert.Equal(t, 10, state.IntimacyScore)
	intimacy.AssertExpectations(t)
}

func TestRecordInteraction_RejectsUnknownType(t *testing.T) {
	intimacy := new(mocks.IntimacyRepository)
	svc := NewIntimacyService(intimacy, config.DefaultGameRules(), zap.NewNop())

	_, err := svc.RecordInteraction(context.Background(), uuid.New(), uuid.New(), models.InteractionType("wave"))

	assert.ErrorIs(t, err, ErrUnknownInteractionType)
	intimacy.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestGetIntimacyState_MissingStateIsZero(t *testing.T) {
	intimacy := new(mocks.IntimacyRepository)
	svc := NewIntimacyService(intimacy, config.DefaultGameRules(), zap.NewNop())

	userID := uuid.New()
	memberID := uuid.New()
	intimacy.On("Get", mock.Anything, userID, memberID).Return(nil, models.ErrStateNotFound)

	state, err := svc.GetIntimacyState(context.Background(), userID, memberID)

	assert.NoError(t, err)
	assert.Equal(t, 0, state.IntimacyScore)
	assert.Equal(t, 1, state.IntimacyLevel)
}

package service

import (
	"context"
	"encoding/json"
	"testing"

	"character-game-server/internal/config"
	"character-game-server/shared/interfaces/mocks"
	"character-game-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestGetProgressionState_DerivesLevelFields(t *testing.T) {
	progression := new(mocks.ProgressionRepository)
	svc := NewProgressionService(progression, nil, nil, config.DefaultGameRules(), zap.NewNop())

	userID := uuid.New()
	progression.On("Get", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return(&models.ProgressionState{UserID: userID, TotalExperience: 250, Points: 30, Badges: []string{"badge_sprout"}}, nil)

	view, err := svc.GetProgressionState(context.Background(), userID, nil)

	assert.NoError(t, err)
	assert.Equal(t, 250, view.TotalExperience)
	assert.Equal(t, 2, view.Level)
	assert.Equal(t, 150, view.ExpInLevel)
	assert.Equal(t, 200, view.ExpToNextLevel)
	assert.Equal(t, 30, view.Points)
	assert.Equal(t, []string{"badge_sprout"}, view.Badges)
}

func TestGetProgressionState_MissingStateIsZero(t *testing.T) {
	progression := new(mocks.ProgressionRepository)
	svc := NewProgressionService(progression, nil, nil, config.DefaultGameRules(), zap.NewNop())

	userID := uuid.New()
	progression.On("Get", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return(nil, models.ErrStateNotFound)

	view, err := svc.GetProgressionState(context.Background(), userID, nil)

	assert.NoError(t, err)
	assert.Equal(t, 0, view.TotalExperience)
	assert.Equal(t, 1, view.Level)
	assert.Equal(t, 100, view.ExpToNextLevel)
	assert.NotNil(t, view.Badges)
}

func TestGetProgressionState_ServesFromCache(t *testing.T) {
	progression := new(mocks.ProgressionRepository)
	cache := new(mocks.Cache)
	svc := NewProgressionService(progression, cache, nil, config.DefaultGameRules(), zap.NewNop())

	userID := uuid.New()
	cached, _ := json.Marshal(&ProgressionView{UserID: userID, TotalExperience: 120, Level: 2})
	cache.On("Get", mock.Anything, "game:progression:"+userID.String()+":self").
		Return(cached, nil)

	view, err := svc.GetProgressionState(context.Background(), userID, nil)

	assert.NoError(t, err)
	assert.Equal(t, 120, view.TotalExperience)
	progression.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProgressionState_FallsBackOnCorruptCacheEntry(t *testing.T) {
	progression := new(mocks.ProgressionRepository)
	cache := new(mocks.Cache)
	svc := NewProgressionService(progression, cache, nil, config.DefaultGameRules(), zap.NewNop())

	userID := uuid.New()
	cache.On("Get", mock.Anything, mock.Anything).Return([]byte("{not json"), nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	progression.On("Get", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return(&models.ProgressionState{UserID: userID, TotalExperience: 50}, nil)

	view, err := svc.GetProgressionState(context.Background(), userID, nil)

	assert.NoError(t, err)
	assert.Equal(t, 50, view.TotalExperience)
	progression.AssertExpectations(t)
}

func TestAddHealthScoreExperience(t *testing.T) {
	progression := new(mocks.ProgressionRepository)
	svc := NewProgressionService(progression, nil, nil, config.DefaultGameRules(), zap.NewNop())

	userID := uuid.New()
	progression.On("Get", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return(&models.ProgressionState{UserID: userID, TotalExperience: 40}, nil)
	// 40 + floor(8.5 * 10) = 125 пересекает порог второго уровня,
	// поэтому начисляется бонус и значок, как при завершении события
	progression.On("Upsert", mock.Anything, mock.MatchedBy(func(s *models.ProgressionState) bool {
		return s.TotalExperience == 125 && s.Points == 50 && s.HasBadge("badge_sprout")
	})).Return(nil)

	view, err := svc.AddHealthScoreExperience(context.Background(), userID, nil, 8.5)

	assert.NoError(t, err)
	assert.Equal(t, 125, view.TotalExperience)
	assert.Equal(t, 2, view.Level)
	assert.Equal(t, 50, view.Points)
	assert.Contains(t, view.Badges, "badge_sprout")
	progression.AssertExpectations(t)
}

func TestAddHealthScoreExperience_PublishesLevelUpNotification(t *testing.T) {
	progression := new(mocks.ProgressionRepository)
	publisher := new(mocks.GameNotificationPublisher)
	svc := NewProgressionService(progression, nil, publisher, config.DefaultGameRules(), zap.NewNop())

	userID := uuid.New()
	progression.On("Get", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return(&models.ProgressionState{UserID: userID, TotalExperience: 90}, nil)
	progression.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishGameNotification", mock.Anything, mock.MatchedBy(func(p models.GameNotificationPayload) bool {
		return p.Kind == models.NotificationLevelUp && p.UserID == userID
	})).Return(nil)

	_, err := svc.AddHealthScoreExperience(context.Background(), userID, nil, 2.0)

	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestAddHealthScoreExperience_NonPositiveScoreIsNoOp(t *testing.T) {
	progression := new(mocks.ProgressionRepository)
	svc := NewProgressionService(progression, nil, nil, config.DefaultGameRules(), zap.NewNop())

	userID := uuid.New()
	progression.On("Get", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return(&models.ProgressionState{UserID: userID, TotalExperience: 40}, nil)

	view, err := svc.AddHealthScoreExperience(context.Background(), userID, nil, -1.0)

	assert.NoError(t, err)
	assert.Equal(t, 40, view.TotalExperience)
	progression.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

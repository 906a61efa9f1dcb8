package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"character-game-server/internal/config"
	"character-game-server/internal/dialogue"
	"character-game-server/shared/interfaces/mocks"
	"character-game-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var serviceTestNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestEventService(events *mocks.GameEventRepository, progression *mocks.ProgressionRepository) *GameEventService {
	svc := NewGameEventService(events, progression, nil, dialogue.NewResolver(nil), config.DefaultGameRules(), zap.NewNop())
	svc.now = func() time.Time { return serviceTestNow }
	return svc
}

func medicationEvent(status models.EventStatus, scheduled time.Time) *models.GameEvent {
	data, _ := models.EncodePayload(models.EventTypeMedication, models.EventPayload{
		Medication: &models.MedicationPayload{
			PrescriptionID: "rx-1",
			MedicationName: "혈압약",
			DoseTime:       scheduled,
		},
	})
	return &models.GameEvent{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		EventType:     models.EventTypeMedication,
		EventData:     data,
		ScheduledTime: scheduled,
		Priority:      models.PriorityNormal,
		Status:        status,
	}
}

func TestGetActiveEvents_PromotesDuePending(t *testing.T) {
	events := new(mocks.GameEventRepository)
	progression := new(mocks.ProgressionRepository)
	svc := newTestEventService(events, progression)

	userID := uuid.New()
	due := medicationEvent(models.EventStatusPending, serviceTestNow.Add(-10*time.Minute))
	future := medicationEvent(models.EventStatusPending, serviceTestNow.Add(2*time.Hour))

	events.On("ListPendingAndActive", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return([]*models.GameEvent{due, future}, nil)
	events.On("TransitionStatus", mock.Anything, due.ID, models.EventStatusPending, models.EventStatusActive, (*time.Time)(nil)).
		Return(true, nil)

	result, err := svc.GetActiveEvents(context.Background(), userID, nil)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, due.ID, result[0].ID)
	assert.Equal(t, models.EventStatusActive, result[0].Status)
	events.AssertExpectations(t)
}

func TestGetActiveEvents_SkipsEventWhenPromotionGuardLoses(t *testing.T) {
	events := new(mocks.GameEventRepository)
	svc := newTestEventService(events, new(mocks.ProgressionRepository))

	userID := uuid.New()
	due := medicationEvent(models.EventStatusPending, serviceTestNow.Add(-time.Minute))

	events.On("ListPendingAndActive", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return([]*models.GameEvent{due}, nil)
	events.On("TransitionStatus", mock.Anything, due.ID, models.EventStatusPending, models.EventStatusActive, (*time.Time)(nil)).
		Return(false, nil)

	result, err := svc.GetActiveEvents(context.Background(), userID, nil)

	assert.NoError(t, err)
	assert.Empty(t, result)
}

func TestGetActiveEvents_SurfacesEventWhenPromotionWriteFails(t *testing.T) {
	events := new(mocks.GameEventRepository)
	svc := newTestEventService(events, new(mocks.ProgressionRepository))

	userID := uuid.New()
	due := medicationEvent(models.EventStatusPending, serviceTestNow.Add(-time.Minute))

	events.On("ListPendingAndActive", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return([]*models.GameEvent{due}, nil)
	events.On("TransitionStatus", mock.Anything, due.ID, models.EventStatusPending, models.EventStatusActive, (*time.Time)(nil)).
		Return(false, errors.New("connection reset"))

	result, err := svc.GetActiveEvents(context.Background(), userID, nil)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, models.EventStatusActive, result[0].Status)
}

func TestGetActiveEvents_ExpiresStaleActive(t *testing.T) {
	events := new(mocks.GameEventRepository)
	svc := newTestEventService(events, new(mocks.ProgressionRepository))

	userID := uuid.New()
	stale := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-8*time.Hour))
	validUntil := serviceTestNow.Add(-2 * time.Hour)
	stale.ValidUntil = &validUntil

	events.On("ListPendingAndActive", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return([]*models.GameEvent{stale}, nil)
	events.On("TransitionStatus", mock.Anything, stale.ID, models.EventStatusActive, models.EventStatusExpired, (*time.Time)(nil)).
		Return(true, nil)

	result, err := svc.GetActiveEvents(context.Background(), userID, nil)

	assert.NoError(t, err)
	assert.Empty(t, result)
	events.AssertExpectations(t)
}

func TestGetActiveEvents_SortsByPriorityThenScheduledTime(t *testing.T) {
	events := new(mocks.GameEventRepository)
	svc := newTestEventService(events, new(mocks.ProgressionRepository))

	userID := uuid.New()
	late := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-time.Hour))
	late.Priority = models.PriorityNormal
	urgent := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-30*time.Minute))
	urgent.Priority = models.PriorityUrgent
	early := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-2*time.Hour))
	early.Priority = models.PriorityNormal

	events.On("ListPendingAndActive", mock.Anything, userID, (*uuid.UUID)(nil)).
		Return([]*models.GameEvent{late, urgent, early}, nil)

	result, err := svc.GetActiveEvents(context.Background(), userID, nil)

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{urgent.ID, early.ID, late.ID},
		[]uuid.UUID{result[0].ID, result[1].ID, result[2].ID})
}

func TestCompleteEvent_AwardsRewardForPriority(t *testing.T) {
	events := new(mocks.GameEventRepository)
	progression := new(mocks.ProgressionRepository)
	svc := newTestEventService(events, progression)

	ev := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-time.Hour))
	ev.Priority = models.PriorityHigh

	events.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)
	events.On("TransitionStatus", mock.Anything, ev.ID, models.EventStatusActive, models.EventStatusCompleted, &serviceTestNow).
		Return(true, nil)
	progression.On("Get", mock.Anything, ev.UserID, (*uuid.UUID)(nil)).
		Return(&models.ProgressionState{UserID: ev.UserID, TotalExperience: 40, Points: 7}, nil)
	progression.On("Upsert", mock.Anything, mock.MatchedBy(func(s *models.ProgressionState) bool {
		return s.TotalExperience == 60 && s.Points == 17
	})).Return(nil)

	result, err := svc.CompleteEvent(context.Background(), ev.ID, ev.UserID)

	assert.NoError(t, err)
	assert.Equal(t, 20, result.ExperienceEarned)
	assert.Equal(t, 10, result.PointsEarned)
	assert.False(t, result.LeveledUp)
	assert.False(t, result.RewardApplyFailed)
	assert.Equal(t, models.EventStatusCompleted, result.Event.Status)
	assert.NotNil(t, result.Event.CompletedAt)
	events.AssertExpectations(t)
	progression.AssertExpectations(t)
}

func TestCompleteEvent_LevelUpGrantsBonusAndBadges(t *testing.T) {
	events := new(mocks.GameEventRepository)
	progression := new(mocks.ProgressionRepository)
	svc := newTestEventService(events, progression)

	ev := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-time.Hour))
	ev.Priority = models.PriorityUrgent // +30 exp, +15 points

	events.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)
	events.On("TransitionStatus", mock.Anything, ev.ID, models.EventStatusActive, models.EventStatusCompleted, &serviceTestNow).
		Return(true, nil)
	// 90 + 30 = 120: пересекает порог 100, уровень 1 → 2
	progression.On("Get", mock.Anything, ev.UserID, (*uuid.UUID)(nil)).
		Return(&models.ProgressionState{UserID: ev.UserID, TotalExperience: 90}, nil)
	progression.On("Upsert", mock.Anything, mock.MatchedBy(func(s *models.ProgressionState) bool {
		return s.TotalExperience == 120 && s.Points == 15+50 && s.HasBadge("badge_sprout")
	})).Return(nil)

	result, err := svc.CompleteEvent(context.Background(), ev.ID, ev.UserID)

	assert.NoError(t, err)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 2, result.NewLevel)
	assert.Equal(t, 50, result.LevelUpBonus)
	assert.Equal(t, []string{"badge_sprout"}, result.UnlockedBadges)
	progression.AssertExpectations(t)
}

func TestCompleteEvent_RejectsNonActiveEvent(t *testing.T) {
	events := new(mocks.GameEventRepository)
	progression := new(mocks.ProgressionRepository)
	svc := newTestEventService(events, progression)

	ev := medicationEvent(models.EventStatusCompleted, serviceTestNow.Add(-time.Hour))
	events.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)

	result, err := svc.CompleteEvent(context.Background(), ev.ID, ev.UserID)

	assert.ErrorIs(t, err, models.ErrInvalidEventState)
	assert.Nil(t, result)
	// Повторное завершение не должно трогать прогрессию
	progression.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	progression.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCompleteEvent_RejectsWhenGuardLosesRace(t *testing.T) {
	events := new(mocks.GameEventRepository)
	progression := new(mocks.ProgressionRepository)
	svc := newTestEventService(events, progression)

	ev := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-time.Hour))
	events.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)
	events.On("TransitionStatus", mock.Anything, ev.ID, models.EventStatusActive, models.EventStatusCompleted, &serviceTestNow).
		Return(false, nil)

	result, err := svc.CompleteEvent(context.Background(), ev.ID, ev.UserID)

	assert.ErrorIs(t, err, models.ErrInvalidEventState)
	assert.Nil(t, result)
	progression.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCompleteEvent_ExpiryTakesPrecedence(t *testing.T) {
	events := new(mocks.GameEventRepository)
	progression := new(mocks.ProgressionRepository)
	svc := newTestEventService(events, progression)

	ev := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-8*time.Hour))
	validUntil := serviceTestNow.Add(-time.Hour)
	ev.ValidUntil = &validUntil

	events.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)
	events.On("TransitionStatus", mock.Anything, ev.ID, models.EventStatusActive, models.EventStatusExpired, (*time.Time)(nil)).
		Return(true, nil)

	result, err := svc.CompleteEvent(context.Background(), ev.ID, ev.UserID)

	assert.ErrorIs(t, err, models.ErrInvalidEventState)
	assert.Nil(t, result)
	progression.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	events.AssertExpectations(t)
}

func TestCompleteEvent_UnknownEvent(t *testing.T) {
	events := new(mocks.GameEventRepository)
	svc := newTestEventService(events, new(mocks.ProgressionRepository))

	id := uuid.New()
	events.On("GetByID", mock.Anything, id).Return(nil, models.ErrEventNotFound)

	result, err := svc.CompleteEvent(context.Background(), id, uuid.New())

	assert.ErrorIs(t, err, models.ErrEventNotFound)
	assert.Nil(t, result)
}

func TestCompleteEvent_RejectsForeignUserBeforeAnyWrite(t *testing.T) {
	events := new(mocks.GameEventRepository)
	progression := new(mocks.ProgressionRepository)
	svc := newTestEventService(events, progression)

	ev := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-time.Hour))
	events.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)

	result, err := svc.CompleteEvent(context.Background(), ev.ID, uuid.New())

	// Чужое событие выглядит как отсутствующее и остается нетронутым
	assert.ErrorIs(t, err, models.ErrEventNotFound)
	assert.Nil(t, result)
	events.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	progression.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	progression.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCompleteEvent_RewardFailureDoesNotRollBackCompletion(t *testing.T) {
	events := new(mocks.GameEventRepository)
	progression := new(mocks.ProgressionRepository)
	svc := newTestEventService(events, progression)

	ev := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-time.Hour))
	events.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)
	events.On("TransitionStatus", mock.Anything, ev.ID, models.EventStatusActive, models.EventStatusCompleted, &serviceTestNow).
		Return(true, nil)
	progression.On("Get", mock.Anything, ev.UserID, (*uuid.UUID)(nil)).
		Return(nil, errors.New("db down"))

	result, err := svc.CompleteEvent(context.Background(), ev.ID, ev.UserID)

	assert.NoError(t, err)
	assert.True(t, result.RewardApplyFailed)
	assert.Equal(t, models.EventStatusCompleted, result.Event.Status)
}

func TestCancelEventsForRecord(t *testing.T) {
	events := new(mocks.GameEventRepository)
	svc := newTestEventService(events, new(mocks.ProgressionRepository))

	events.On("CancelByDomainRecord", mock.Anything, "rx-9").Return(int64(3), nil)

	cancelled, err := svc.CancelEventsForRecord(context.Background(), "rx-9")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), cancelled)
}

func TestCompleteEvent_PublishesLevelUpNotification(t *testing.T) {
	events := new(mocks.GameEventRepository)
	progression := new(mocks.ProgressionRepository)
	publisher := new(mocks.GameNotificationPublisher)
	svc := NewGameEventService(events, progression, publisher, dialogue.NewResolver(nil), config.DefaultGameRules(), zap.NewNop())
	svc.now = func() time.Time { return serviceTestNow }

	ev := medicationEvent(models.EventStatusActive, serviceTestNow.Add(-time.Hour))
	ev.Priority = models.PriorityUrgent

	events.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)
	events.On("TransitionStatus", mock.Anything, ev.ID, models.EventStatusActive, models.EventStatusCompleted, &serviceTestNow).
		Return(true, nil)
	progression.On("Get", mock.Anything, ev.UserID, (*uuid.UUID)(nil)).
		Return(&models.ProgressionState{UserID: ev.UserID, TotalExperience: 90}, nil)
	progression.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishGameNotification", mock.Anything, mock.MatchedBy(func(p models.GameNotificationPayload) bool {
		return p.Kind == models.NotificationLevelUp && p.UserID == ev.UserID
	})).Return(nil)

	result, err := svc.CompleteEvent(context.Background(), ev.ID, ev.UserID)

	assert.NoError(t, err)
	assert.True(t, result.LeveledUp)
	publisher.AssertExpectations(t)
}

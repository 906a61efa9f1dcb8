package handler

import (
	"time"

	"character-game-server/internal/service"
	"character-game-server/shared/models"

	"github.com/google/uuid"
)

// ActiveEventResponse - событие в выдаче вместе с разрешенной репликой персонажа.
type ActiveEventResponse struct {
	ID             uuid.UUID            `json:"id"`
	FamilyMemberID *uuid.UUID           `json:"family_member_id,omitempty"`
	EventType      models.EventType     `json:"event_type"`
	Priority       models.EventPriority `json:"priority"`
	ScheduledTime  time.Time            `json:"scheduled_time"`
	ValidUntil     *time.Time           `json:"valid_until,omitempty"`
	Dialogue       string               `json:"dialogue"`
	Emotion        models.Emotion       `json:"emotion"`
}

// ActiveEventsListResponse - ответ списка активных событий.
type ActiveEventsListResponse struct {
	Events []ActiveEventResponse `json:"events"`
}

// CompleteEventResponse - ответ на завершение события.
type CompleteEventResponse struct {
	EventID           uuid.UUID `json:"event_id"`
	CompletedAt       time.Time `json:"completed_at"`
	ExperienceEarned  int       `json:"experience_earned"`
	PointsEarned      int       `json:"points_earned"`
	LeveledUp         bool      `json:"leveled_up"`
	NewLevel          int       `json:"new_level,omitempty"`
	LevelUpBonus      int       `json:"level_up_bonus,omitempty"`
	UnlockedBadges    []string  `json:"unlocked_badges,omitempty"`
	RewardApplyFailed bool      `json:"reward_apply_failed,omitempty"`
}

// RecordInteractionRequest - тело запроса на запись взаимодействия.
type RecordInteractionRequest struct {
	FamilyMemberID  uuid.UUID              `json:"family_member_id" binding:"required"`
	InteractionType models.InteractionType `json:"interaction_type" binding:"required"`
}

// HealthScoreRequest - внутренний запрос на начисление опыта за health score.
type HealthScoreRequest struct {
	UserID         uuid.UUID  `json:"user_id" binding:"required"`
	FamilyMemberID *uuid.UUID `json:"family_member_id"`
	HealthScore    float64    `json:"health_score" binding:"required"`
}

// LifecycleEventRequest - внутренний запрос на постановку жизненного события.
type LifecycleEventRequest struct {
	UserID         uuid.UUID                `json:"user_id" binding:"required"`
	FamilyMemberID *uuid.UUID               `json:"family_member_id"`
	Category       models.LifecycleCategory `json:"category" binding:"required"`
	Title          string                   `json:"title" binding:"required"`
	Date           time.Time                `json:"date" binding:"required"`
}

// IntimacyResponse - состояние близости в ответе API.
type IntimacyResponse struct {
	FamilyMemberID    uuid.UUID  `json:"family_member_id"`
	IntimacyScore     int        `json:"intimacy_score"`
	IntimacyLevel     int        `json:"intimacy_level"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty"`
}

// CharacterSnapshotResponse - сводное состояние персонажа для главного экрана:
// прогрессия, близость (для членов семьи) и число ожидающих дел.
type CharacterSnapshotResponse struct {
	Progression      *service.ProgressionView `json:"progression"`
	Intimacy         *IntimacyResponse        `json:"intimacy,omitempty"`
	ActiveEventCount int                      `json:"active_event_count"`
	Emotion          models.Emotion           `json:"emotion"`
	Dialogue         string                   `json:"dialogue,omitempty"`
}

func toActiveEventResponse(ev *models.GameEvent, line models.DialogueLine) ActiveEventResponse {
	return ActiveEventResponse{
		ID:             ev.ID,
		FamilyMemberID: ev.FamilyMemberID,
		EventType:      ev.EventType,
		Priority:       ev.Priority,
		ScheduledTime:  ev.ScheduledTime,
		ValidUntil:     ev.ValidUntil,
		Dialogue:       line.Message,
		Emotion:        line.Emotion,
	}
}

func toCompleteEventResponse(result *models.CompletionResult) CompleteEventResponse {
	resp := CompleteEventResponse{
		EventID:           result.Event.ID,
		ExperienceEarned:  result.ExperienceEarned,
		PointsEarned:      result.PointsEarned,
		LeveledUp:         result.LeveledUp,
		NewLevel:          result.NewLevel,
		LevelUpBonus:      result.LevelUpBonus,
		UnlockedBadges:    result.UnlockedBadges,
		RewardApplyFailed: result.RewardApplyFailed,
	}
	if result.Event.CompletedAt != nil {
		resp.CompletedAt = *result.Event.CompletedAt
	}
	return resp
}

func toIntimacyResponse(state *models.IntimacyState) *IntimacyResponse {
	return &IntimacyResponse{
		FamilyMemberID:    state.FamilyMemberID,
		IntimacyScore:     state.IntimacyScore,
		IntimacyLevel:     state.IntimacyLevel,
		LastInteractionAt: state.LastInteractionAt,
	}
}

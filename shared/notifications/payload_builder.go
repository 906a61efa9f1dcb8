package notifications

import (
	"fmt"
	"time"

	"character-game-server/shared/models"
)

// BuildEventActivatedPayload creates the delivery-layer description for an
// event that just became visible to the user. The dialogue line is resolved
// by the caller so this builder stays free of randomness.
func BuildEventActivatedPayload(event *models.GameEvent, line models.DialogueLine) (*models.GameNotificationPayload, error) {
	if event == nil {
		return nil, fmt.Errorf("cannot build activation payload for nil event")
	}

	data := map[string]string{
		"event_id":   event.ID.String(),
		"event_type": string(event.EventType),
		"priority":   string(event.Priority),
	}
	if event.FamilyMemberID != nil {
		data["family_member_id"] = event.FamilyMemberID.String()
	}

	return &models.GameNotificationPayload{
		Kind:           models.NotificationEventActivated,
		UserID:         event.UserID,
		FamilyMemberID: event.FamilyMemberID,
		Title:          "돌봄 알림",
		Body:           line.Message,
		Emotion:        line.Emotion,
		Data:           data,
		EmittedAt:      time.Now(),
	}, nil
}

// BuildLevelUpPayload создает payload для уведомления о новом уровне персонажа.
func BuildLevelUpPayload(state *models.ProgressionState, newLevel, bonusPoints int) (*models.GameNotificationPayload, error) {
	if state == nil {
		return nil, fmt.Errorf("cannot build level up payload for nil state")
	}

	data := map[string]string{
		"new_level":    fmt.Sprintf("%d", newLevel),
		"bonus_points": fmt.Sprintf("%d", bonusPoints),
	}
	if state.FamilyMemberID != nil {
		data["family_member_id"] = state.FamilyMemberID.String()
	}

	return &models.GameNotificationPayload{
		Kind:           models.NotificationLevelUp,
		UserID:         state.UserID,
		FamilyMemberID: state.FamilyMemberID,
		Title:          "레벨 업!",
		Body:           fmt.Sprintf("캐릭터가 레벨 %d(이)가 되었어요!", newLevel),
		Emotion:        models.EmotionExcited,
		Data:           data,
		EmittedAt:      time.Now(),
	}, nil
}

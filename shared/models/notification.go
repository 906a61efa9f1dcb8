package models

import (
	"time"

	"github.com/google/uuid"
)

// GameNotificationKind distinguishes the one-way notifications this core emits.
// Delivery (push/SMS/banner) is somebody else's job.
type GameNotificationKind string

const (
	NotificationEventActivated GameNotificationKind = "event_activated"
	NotificationLevelUp        GameNotificationKind = "level_up"
)

// GameNotificationPayload is the description handed to the delivery layer.
type GameNotificationPayload struct {
	Kind           GameNotificationKind `json:"kind"`
	UserID         uuid.UUID            `json:"user_id"`
	FamilyMemberID *uuid.UUID           `json:"family_member_id,omitempty"`
	Title          string               `json:"title"`
	Body           string               `json:"body"`
	Emotion        Emotion              `json:"emotion,omitempty"`
	Data           map[string]string    `json:"data,omitempty"`
	EmittedAt      time.Time            `json:"emitted_at"`
}

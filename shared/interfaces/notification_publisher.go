package interfaces

import (
	"context"

	"character-game-server/shared/models"
)

// GameNotificationPublisher emits one-way notification descriptions for the
// delivery layer (push/SMS/banner). The game core never delivers anything
// itself; publish failures are logged and swallowed by callers.
type GameNotificationPublisher interface {
	PublishGameNotification(ctx context.Context, payload models.GameNotificationPayload) error
}

// Package adapter содержит доменные адаптеры-источники: каждый читает свои
// записи (назначения, кормления, календари, оповещения) и предлагает
// кандидатов игровых событий. Адаптеры не имеют побочных эффектов - они
// только читают доменные записи и опорные часы и возвращают кандидатов.
package adapter

import (
	"context"

	"character-game-server/shared/models"

	"github.com/google/uuid"
)

// SourceAdapter - общий контракт доменного адаптера.
type SourceAdapter interface {
	// Name - стабильное имя адаптера для логов и метрик.
	Name() string

	// GenerateCandidates возвращает ноль и более кандидатов для области
	// (пользователь, член семьи или nil = сам пользователь).
	GenerateCandidates(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.GameEventCandidate, error)
}

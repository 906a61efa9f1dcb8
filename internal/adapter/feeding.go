package adapter

import (
	"context"
	"fmt"
	"time"

	"character-game-server/internal/config"
	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ SourceAdapter = (*FeedingAdapter)(nil)

// FeedingAdapter порождает кандидата очередного кормления:
// один на ребенка, в момент last_feeding_time + интервал цикла.
// Рекуррентность обеспечивается натуральным ключом: пока событие текущего
// цикла не терминально, планировщик не материализует новое; после записи
// нового кормления last_feeding_time сдвигается и ключ меняется сам.
type FeedingAdapter struct {
	sources interfaces.DomainSourceRepository
	rules   *config.GameRules
	logger  *zap.Logger
	now     func() time.Time
}

// NewFeedingAdapter создает адаптер кормлений.
func NewFeedingAdapter(sources interfaces.DomainSourceRepository, rules *config.GameRules, logger *zap.Logger) *FeedingAdapter {
	return &FeedingAdapter{
		sources: sources,
		rules:   rules,
		logger:  logger.Named("FeedingAdapter"),
		now:     time.Now,
	}
}

// Name implements SourceAdapter.
func (a *FeedingAdapter) Name() string { return "baby_feeding" }

// GenerateCandidates implements SourceAdapter.
func (a *FeedingAdapter) GenerateCandidates(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.GameEventCandidate, error) {
	records, err := a.sources.LatestFeedingRecords(ctx, userID, familyMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeding records: %w", err)
	}

	now := a.now()
	validity := a.rules.ValidityWindow(models.EventTypeBabyFeeding)

	candidates := make([]models.GameEventCandidate, 0, len(records))
	for _, rec := range records {
		if rec.CycleHours <= 0 {
			a.logger.Warn("Feeding record without cycle interval", zap.String("recordID", rec.RecordID))
			continue
		}

		nextFeeding := rec.LastFeedingTime.Add(time.Duration(rec.CycleHours) * time.Hour)

		// Ребенок ждет - поднимаем приоритет
		priority := models.PriorityNormal
		if now.After(nextFeeding) {
			priority = models.PriorityHigh
		}

		data, err := models.EncodePayload(models.EventTypeBabyFeeding, models.EventPayload{
			Feeding: &models.FeedingPayload{
				FamilyMemberName: rec.FamilyMemberName,
				LastFeedingTime:  rec.LastFeedingTime,
				CycleHours:       rec.CycleHours,
			},
		})
		if err != nil {
			a.logger.Warn("Skipping feeding record with unencodable payload",
				zap.String("recordID", rec.RecordID), zap.Error(err))
			continue
		}

		memberID := rec.FamilyMemberID
		validUntil := nextFeeding.Add(validity)
		candidates = append(candidates, models.GameEventCandidate{
			UserID:         userID,
			FamilyMemberID: &memberID,
			EventType:      models.EventTypeBabyFeeding,
			EventData:      data,
			ScheduledTime:  nextFeeding,
			ValidUntil:     &validUntil,
			Priority:       priority,
			NaturalKey:     models.BuildNaturalKey(userID, &memberID, models.EventTypeBabyFeeding, rec.RecordID, nextFeeding),
			DomainRecordID: rec.RecordID,
		})
	}

	return candidates, nil
}

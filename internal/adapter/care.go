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

var _ SourceAdapter = (*CareScheduleAdapter)(nil)

// CareScheduleAdapter порождает кандидатов медосмотров и прививок из общего
// календаря. Приоритет растет по мере приближения даты: просрочено - urgent,
// три дня и меньше - high, иначе normal.
type CareScheduleAdapter struct {
	sources interfaces.DomainSourceRepository
	rules   *config.GameRules
	logger  *zap.Logger
	now     func() time.Time
}

// NewCareScheduleAdapter создает адаптер календаря осмотров/прививок.
func NewCareScheduleAdapter(sources interfaces.DomainSourceRepository, rules *config.GameRules, logger *zap.Logger) *CareScheduleAdapter {
	return &CareScheduleAdapter{
		sources: sources,
		rules:   rules,
		logger:  logger.Named("CareScheduleAdapter"),
		now:     time.Now,
	}
}

// Name implements SourceAdapter.
func (a *CareScheduleAdapter) Name() string { return "care_schedule" }

// GenerateCandidates implements SourceAdapter.
func (a *CareScheduleAdapter) GenerateCandidates(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.GameEventCandidate, error) {
	now := a.now()
	window := time.Duration(a.rules.ReminderWindowDays) * 24 * time.Hour

	schedules, err := a.sources.UpcomingCareSchedules(ctx, userID, familyMemberID, now, window)
	if err != nil {
		return nil, fmt.Errorf("failed to read care schedules: %w", err)
	}

	validity := a.rules.ValidityWindow(models.EventTypeHealthCheckup)

	candidates := make([]models.GameEventCandidate, 0, len(schedules))
	for _, sched := range schedules {
		daysUntil := int(sched.DueDate.Sub(now).Hours() / 24)

		var priority models.EventPriority
		switch {
		case daysUntil < 0:
			priority = models.PriorityUrgent
		case daysUntil <= 3:
			priority = models.PriorityHigh
		default:
			priority = models.PriorityNormal
		}

		eventType := models.EventTypeHealthCheckup
		if sched.Kind == models.CareScheduleVaccination {
			eventType = models.EventTypeVaccination
		}

		data, err := models.EncodePayload(eventType, models.EventPayload{
			Checkup: &models.CheckupPayload{
				ScheduleID: sched.ScheduleID,
				Title:      sched.Title,
				DaysUntil:  daysUntil,
			},
		})
		if err != nil {
			a.logger.Warn("Skipping care schedule with unencodable payload",
				zap.String("scheduleID", sched.ScheduleID), zap.Error(err))
			continue
		}

		// Напоминание показывается сразу, но остается валидным до даты + окно
		validUntil := sched.DueDate.Add(validity)
		candidates = append(candidates, models.GameEventCandidate{
			UserID:         userID,
			FamilyMemberID: sched.FamilyMemberID,
			EventType:      eventType,
			EventData:      data,
			ScheduledTime:  now,
			ValidUntil:     &validUntil,
			Priority:       priority,
			NaturalKey:     models.BuildNaturalKey(userID, sched.FamilyMemberID, eventType, sched.ScheduleID, sched.DueDate),
			DomainRecordID: sched.ScheduleID,
		})
	}

	return candidates, nil
}

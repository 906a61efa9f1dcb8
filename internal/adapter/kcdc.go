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

var _ SourceAdapter = (*KCDCAlertAdapter)(nil)

// KCDCAlertAdapter порождает кандидатов по активным оповещениям KCDC:
// одно на каждое оповещение, прошедшее фильтр по возрасту и региону
// профиля. Приоритет повторяет severity оповещения.
type KCDCAlertAdapter struct {
	sources interfaces.DomainSourceRepository
	rules   *config.GameRules
	logger  *zap.Logger
	now     func() time.Time
}

// NewKCDCAlertAdapter создает адаптер оповещений KCDC.
func NewKCDCAlertAdapter(sources interfaces.DomainSourceRepository, rules *config.GameRules, logger *zap.Logger) *KCDCAlertAdapter {
	return &KCDCAlertAdapter{
		sources: sources,
		rules:   rules,
		logger:  logger.Named("KCDCAlertAdapter"),
		now:     time.Now,
	}
}

// Name implements SourceAdapter.
func (a *KCDCAlertAdapter) Name() string { return "kcdc_alert" }

// GenerateCandidates implements SourceAdapter.
func (a *KCDCAlertAdapter) GenerateCandidates(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.GameEventCandidate, error) {
	now := a.now()

	alerts, err := a.sources.ActiveHealthAlerts(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to read active health alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil, nil
	}

	profiles, err := a.sources.FamilyProfiles(ctx, userID, familyMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to read family profiles: %w", err)
	}

	validity := a.rules.ValidityWindow(models.EventTypeKCDCAlert)

	var candidates []models.GameEventCandidate
	for _, alert := range alerts {
		for _, profile := range profiles {
			if !alertMatchesProfile(alert, profile) {
				continue
			}

			data, err := models.EncodePayload(models.EventTypeKCDCAlert, models.EventPayload{
				Alert: &models.AlertPayload{
					AlertID:  alert.AlertID,
					Title:    alert.Title,
					Severity: alert.Severity,
					Region:   alert.Region,
				},
			})
			if err != nil {
				a.logger.Warn("Skipping alert with unencodable payload",
					zap.String("alertID", alert.AlertID), zap.Error(err))
				continue
			}

			validUntil := alert.IssuedAt.Add(validity)
			candidates = append(candidates, models.GameEventCandidate{
				UserID:         userID,
				FamilyMemberID: profile.FamilyMemberID,
				EventType:      models.EventTypeKCDCAlert,
				EventData:      data,
				ScheduledTime:  alert.IssuedAt,
				ValidUntil:     &validUntil,
				Priority:       priorityForSeverity(alert.Severity),
				NaturalKey:     models.BuildNaturalKey(userID, profile.FamilyMemberID, models.EventTypeKCDCAlert, alert.AlertID, alert.IssuedAt),
				DomainRecordID: alert.AlertID,
			})
		}
	}

	return candidates, nil
}

// alertMatchesProfile проверяет фильтр оповещения по региону и возрасту.
func alertMatchesProfile(alert models.HealthAlert, profile models.FamilyProfile) bool {
	if alert.Region != "" && alert.Region != profile.Region {
		return false
	}
	if alert.MinAge > 0 && profile.Age < alert.MinAge {
		return false
	}
	if alert.MaxAge > 0 && profile.Age > alert.MaxAge {
		return false
	}
	return true
}

// priorityForSeverity отображает severity оповещения на приоритет события.
func priorityForSeverity(severity models.AlertSeverity) models.EventPriority {
	switch severity {
	case models.SeverityCritical:
		return models.PriorityUrgent
	case models.SeverityWarning:
		return models.PriorityHigh
	default:
		return models.PriorityNormal
	}
}

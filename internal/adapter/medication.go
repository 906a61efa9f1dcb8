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

var _ SourceAdapter = (*MedicationAdapter)(nil)

// MedicationAdapter порождает кандидатов приема лекарств: по одному на
// каждую причитающуюся дозу каждого активного назначения.
type MedicationAdapter struct {
	sources interfaces.DomainSourceRepository
	rules   *config.GameRules
	logger  *zap.Logger
	now     func() time.Time
}

// NewMedicationAdapter создает адаптер приема лекарств.
func NewMedicationAdapter(sources interfaces.DomainSourceRepository, rules *config.GameRules, logger *zap.Logger) *MedicationAdapter {
	return &MedicationAdapter{
		sources: sources,
		rules:   rules,
		logger:  logger.Named("MedicationAdapter"),
		now:     time.Now,
	}
}

// Name implements SourceAdapter.
func (a *MedicationAdapter) Name() string { return "medication" }

// GenerateCandidates implements SourceAdapter.
// Просроченная сверх грейс-окна доза поднимается до urgent, остальные - high.
func (a *MedicationAdapter) GenerateCandidates(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.GameEventCandidate, error) {
	now := a.now()
	doses, err := a.sources.DueMedicationDoses(ctx, userID, familyMemberID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to read due medication doses: %w", err)
	}

	grace := time.Duration(a.rules.MedicationGraceMinutes) * time.Minute
	validity := a.rules.ValidityWindow(models.EventTypeMedication)

	candidates := make([]models.GameEventCandidate, 0, len(doses))
	for _, dose := range doses {
		if !dose.Active {
			continue
		}

		priority := models.PriorityHigh
		overdue := now.Sub(dose.DoseTime) > grace
		if overdue {
			priority = models.PriorityUrgent
		}

		data, err := models.EncodePayload(models.EventTypeMedication, models.EventPayload{
			Medication: &models.MedicationPayload{
				PrescriptionID: dose.PrescriptionID,
				MedicationName: dose.MedicationName,
				DoseTime:       dose.DoseTime,
				Overdue:        overdue,
			},
		})
		if err != nil {
			a.logger.Warn("Skipping dose with unencodable payload",
				zap.String("prescriptionID", dose.PrescriptionID), zap.Error(err))
			continue
		}

		validUntil := dose.DoseTime.Add(validity)
		candidates = append(candidates, models.GameEventCandidate{
			UserID:         userID,
			FamilyMemberID: dose.FamilyMemberID,
			EventType:      models.EventTypeMedication,
			EventData:      data,
			ScheduledTime:  dose.DoseTime,
			ValidUntil:     &validUntil,
			Priority:       priority,
			NaturalKey:     models.BuildNaturalKey(userID, dose.FamilyMemberID, models.EventTypeMedication, dose.PrescriptionID, dose.DoseTime),
			DomainRecordID: dose.PrescriptionID,
		})
	}

	return candidates, nil
}

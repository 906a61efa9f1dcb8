package database

import (
	"context"
	"fmt"
	"time"

	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Запросы только читают таблицы, которые ведет остальная платформа.
const (
	dueMedicationDosesQuery = `
        SELECT prescription_id, user_id, family_member_id, medication_name, dose_time, active
        FROM medication_doses
        WHERE user_id = $1
          AND ($2::uuid IS NULL OR family_member_id = $2)
          AND dose_time <= $3
        ORDER BY dose_time ASC
    `

	latestFeedingRecordsQuery = `
        SELECT DISTINCT ON (family_member_id)
               record_id, user_id, family_member_id, family_member_name, last_feeding_time, cycle_hours
        FROM feeding_records
        WHERE user_id = $1
          AND ($2::uuid IS NULL OR family_member_id = $2)
        ORDER BY family_member_id, last_feeding_time DESC
    `

	upcomingCareSchedulesQuery = `
        SELECT schedule_id, user_id, family_member_id, kind, title, due_date
        FROM care_schedules
        WHERE user_id = $1
          AND ($2::uuid IS NULL OR family_member_id = $2)
          AND due_date <= $3
        ORDER BY due_date ASC
    `

	activeHealthAlertsQuery = `
        SELECT alert_id, title, severity, region, min_age, max_age, issued_at
        FROM health_alerts
        WHERE issued_at <= $1 AND (expires_at IS NULL OR expires_at > $1)
        ORDER BY issued_at DESC
    `

	familyProfilesQuery = `
        SELECT user_id, family_member_id, display_name, age, region
        FROM family_profiles
        WHERE user_id = $1
          AND ($2::uuid IS NULL OR family_member_id = $2)
    `
)

// pgDomainSourceRepository - read-only доступ к доменным таблицам платформы,
// из которых адаптеры порождают кандидатов.
type pgDomainSourceRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.DomainSourceRepository = (*pgDomainSourceRepository)(nil)

// NewPgDomainSourceRepository создает репозиторий доменных источников.
func NewPgDomainSourceRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.DomainSourceRepository {
	return &pgDomainSourceRepository{
		db:     db,
		logger: logger.Named("PgDomainSourceRepo"),
	}
}

func (r *pgDomainSourceRepository) DueMedicationDoses(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID, until time.Time) ([]models.MedicationDose, error) {
	var doses []models.MedicationDose
	if err := pgxscan.Select(ctx, r.db, &doses, dueMedicationDosesQuery, userID, familyMemberID, until); err != nil {
		r.logger.Error("Failed to load due medication doses", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to load due medication doses: %w", err)
	}
	return doses, nil
}

func (r *pgDomainSourceRepository) LatestFeedingRecords(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.FeedingRecord, error) {
	var records []models.FeedingRecord
	if err := pgxscan.Select(ctx, r.db, &records, latestFeedingRecordsQuery, userID, familyMemberID); err != nil {
		r.logger.Error("Failed to load feeding records", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to load feeding records: %w", err)
	}
	return records, nil
}

func (r *pgDomainSourceRepository) UpcomingCareSchedules(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID, now time.Time, reminderWindow time.Duration) ([]models.CareSchedule, error) {
	var schedules []models.CareSchedule
	horizon := now.Add(reminderWindow)
	if err := pgxscan.Select(ctx, r.db, &schedules, upcomingCareSchedulesQuery, userID, familyMemberID, horizon); err != nil {
		r.logger.Error("Failed to load care schedules", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to load care schedules: %w", err)
	}
	return schedules, nil
}

func (r *pgDomainSourceRepository) ActiveHealthAlerts(ctx context.Context, at time.Time) ([]models.HealthAlert, error) {
	var alerts []models.HealthAlert
	if err := pgxscan.Select(ctx, r.db, &alerts, activeHealthAlertsQuery, at); err != nil {
		r.logger.Error("Failed to load active health alerts", zap.Error(err))
		return nil, fmt.Errorf("failed to load active health alerts: %w", err)
	}
	return alerts, nil
}

func (r *pgDomainSourceRepository) FamilyProfiles(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.FamilyProfile, error) {
	var profiles []models.FamilyProfile
	if err := pgxscan.Select(ctx, r.db, &profiles, familyProfilesQuery, userID, familyMemberID); err != nil {
		r.logger.Error("Failed to load family profiles", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to load family profiles: %w", err)
	}
	return profiles, nil
}

package interfaces

import (
	"context"
	"time"

	"character-game-server/shared/models"

	"github.com/google/uuid"
)

// DomainSourceRepository - читающая поверхность над доменными таблицами
// платформы (назначения, кормления, календари, оповещения). Адаптеры
// никогда не пишут в эти таблицы.
type DomainSourceRepository interface {
	// DueMedicationDoses возвращает дозы активных назначений со временем
	// приема не позже until.
	DueMedicationDoses(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID, until time.Time) ([]models.MedicationDose, error)

	// LatestFeedingRecords возвращает последнее кормление по каждому ребенку.
	LatestFeedingRecords(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.FeedingRecord, error)

	// UpcomingCareSchedules возвращает записи календаря с датой исполнения
	// не позже чем через reminderWindow от now (просроченные включаются).
	UpcomingCareSchedules(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID, now time.Time, reminderWindow time.Duration) ([]models.CareSchedule, error)

	// ActiveHealthAlerts возвращает действующие оповещения KCDC.
	ActiveHealthAlerts(ctx context.Context, at time.Time) ([]models.HealthAlert, error)

	// FamilyProfiles возвращает профили для фильтрации оповещений по
	// возрасту/региону.
	FamilyProfiles(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.FamilyProfile, error)
}

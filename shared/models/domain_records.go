package models

import (
	"time"

	"github.com/google/uuid"
)

// Доменные записи, из которых адаптеры порождают кандидатов.
// Эти таблицы ведутся остальной частью платформы; игровой сервис их только читает.

// MedicationDose - причитающаяся доза по активному назначению.
type MedicationDose struct {
	PrescriptionID string     `json:"prescription_id" db:"prescription_id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	FamilyMemberID *uuid.UUID `json:"family_member_id,omitempty" db:"family_member_id"`
	MedicationName string     `json:"medication_name" db:"medication_name"`
	DoseTime       time.Time  `json:"dose_time" db:"dose_time"`
	Active         bool       `json:"active" db:"active"`
}

// FeedingRecord - последнее кормление ребенка и интервал цикла.
type FeedingRecord struct {
	RecordID         string    `json:"record_id" db:"record_id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	FamilyMemberID   uuid.UUID `json:"family_member_id" db:"family_member_id"`
	FamilyMemberName string    `json:"family_member_name" db:"family_member_name"`
	LastFeedingTime  time.Time `json:"last_feeding_time" db:"last_feeding_time"`
	CycleHours       int       `json:"cycle_hours" db:"cycle_hours"`
}

// CareScheduleKind различает медосмотр и прививку в общей таблице расписаний.
type CareScheduleKind string

const (
	CareScheduleCheckup     CareScheduleKind = "checkup"
	CareScheduleVaccination CareScheduleKind = "vaccination"
)

// CareSchedule - запись календаря медосмотров/прививок с датой исполнения.
type CareSchedule struct {
	ScheduleID     string           `json:"schedule_id" db:"schedule_id"`
	UserID         uuid.UUID        `json:"user_id" db:"user_id"`
	FamilyMemberID *uuid.UUID       `json:"family_member_id,omitempty" db:"family_member_id"`
	Kind           CareScheduleKind `json:"kind" db:"kind"`
	Title          string           `json:"title" db:"title"`
	DueDate        time.Time        `json:"due_date" db:"due_date"`
}

// HealthAlert - активное оповещение KCDC с фильтром по региону/возрасту.
type HealthAlert struct {
	AlertID  string        `json:"alert_id" db:"alert_id"`
	Title    string        `json:"title" db:"title"`
	Severity AlertSeverity `json:"severity" db:"severity"`
	Region   string        `json:"region" db:"region"`
	MinAge   int           `json:"min_age" db:"min_age"`
	MaxAge   int           `json:"max_age" db:"max_age"`
	IssuedAt time.Time     `json:"issued_at" db:"issued_at"`
}

// FamilyProfile - минимальный профиль, нужный адаптерам для фильтров KCDC.
type FamilyProfile struct {
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	FamilyMemberID *uuid.UUID `json:"family_member_id,omitempty" db:"family_member_id"`
	DisplayName    string     `json:"display_name" db:"display_name"`
	Age            int        `json:"age" db:"age"`
	Region         string     `json:"region" db:"region"`
}

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType определяет тип игрового события.
// Совпадает с типом ENUM 'game_event_type' в БД.
type EventType string

const (
	EventTypeMedication     EventType = "medication"      // Прием лекарства по расписанию.
	EventTypeBabyFeeding    EventType = "baby_feeding"    // Очередное кормление ребенка.
	EventTypeHealthCheckup  EventType = "health_checkup"  // Плановый медосмотр.
	EventTypeVaccination    EventType = "vaccination"     // Прививка по календарю.
	EventTypeKCDCAlert      EventType = "kcdc_alert"      // Оповещение службы здравоохранения (KCDC).
	EventTypeLifecycleEvent EventType = "lifecycle_event" // День рождения, годовщина и т.п.
)

// AllEventTypes перечисляет все известные типы событий (для валидации).
var AllEventTypes = []EventType{
	EventTypeMedication,
	EventTypeBabyFeeding,
	EventTypeHealthCheckup,
	EventTypeVaccination,
	EventTypeKCDCAlert,
	EventTypeLifecycleEvent,
}

// IsValid проверяет, что тип события известен.
func (t EventType) IsValid() bool {
	for _, known := range AllEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EventPriority определяет срочность события. Порядок важен:
// используется и для сортировки выдачи, и для расчета награды.
type EventPriority string

const (
	PriorityLow    EventPriority = "low"
	PriorityNormal EventPriority = "normal"
	PriorityHigh   EventPriority = "high"
	PriorityUrgent EventPriority = "urgent"
)

// Weight возвращает числовой вес приоритета для сортировки (больше = срочнее).
func (p EventPriority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// EventStatus определяет состояние события в машине состояний.
// pending → active → {completed, expired, cancelled}.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"   // Материализовано, но еще не показывается пользователю.
	EventStatusActive    EventStatus = "active"    // Доступно пользователю для выполнения.
	EventStatusCompleted EventStatus = "completed" // Завершено пользователем, награда начислена.
	EventStatusExpired   EventStatus = "expired"   // Окно валидности истекло без выполнения, без награды.
	EventStatusCancelled EventStatus = "cancelled" // Исходная доменная запись деактивирована до выполнения.
)

// IsTerminal сообщает, является ли статус терминальным.
// Из терминальных статусов переходы запрещены.
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusCompleted || s == EventStatusExpired || s == EventStatusCancelled
}

// GameEvent представляет единицу запланированной игровой работы,
// привязанную к виртуальному персонажу члена семьи.
// События никогда не удаляются физически: терминальные записи
// остаются для истории и аналитики.
type GameEvent struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	FamilyMemberID *uuid.UUID      `json:"family_member_id,omitempty" db:"family_member_id"` // nil = событие самого пользователя
	EventType      EventType       `json:"event_type" db:"event_type"`
	EventData      json.RawMessage `json:"event_data" db:"event_data"` // Типизированный payload, вариант на каждый EventType
	ScheduledTime  time.Time       `json:"scheduled_time" db:"scheduled_time"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty" db:"valid_until"` // Конец окна валидности; nil = без истечения
	Priority       EventPriority   `json:"priority" db:"priority"`
	Status         EventStatus     `json:"status" db:"status"`
	NaturalKey     string          `json:"natural_key" db:"natural_key"`
	DomainRecordID string          `json:"domain_record_id" db:"domain_record_id"` // Исходная доменная запись; по ней идет отмена
	CompletedAt    *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// GameEventCandidate - потенциальное событие, предложенное доменным адаптером.
// Форма GameEvent без ID/Status; NaturalKey обязателен.
type GameEventCandidate struct {
	UserID         uuid.UUID
	FamilyMemberID *uuid.UUID
	EventType      EventType
	EventData      json.RawMessage
	ScheduledTime  time.Time
	ValidUntil     *time.Time
	Priority       EventPriority
	NaturalKey     string
	DomainRecordID string
}

// Validate проверяет минимальную корректность кандидата перед материализацией.
func (c *GameEventCandidate) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: missing user id", ErrInvalidCandidate)
	}
	if !c.EventType.IsValid() {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidCandidate, c.EventType)
	}
	if c.NaturalKey == "" {
		return fmt.Errorf("%w: missing natural key", ErrInvalidCandidate)
	}
	if c.DomainRecordID == "" {
		return fmt.Errorf("%w: missing domain record id", ErrInvalidCandidate)
	}
	if c.ScheduledTime.IsZero() {
		return fmt.Errorf("%w: missing scheduled time", ErrInvalidCandidate)
	}
	if c.Priority.Weight() == 0 {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidCandidate, c.Priority)
	}
	return nil
}

// BuildNaturalKey собирает детерминированный составной ключ обязательства.
// Один и тот же (пользователь, член семьи, тип, доменная запись, дата) всегда
// дает один и тот же ключ - на этом держится идемпотентность планировщика.
func BuildNaturalKey(userID uuid.UUID, familyMemberID *uuid.UUID, eventType EventType, domainRecordID string, due time.Time) string {
	member := "self"
	if familyMemberID != nil {
		member = familyMemberID.String()
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s", userID, member, eventType, domainRecordID, due.UTC().Format(time.RFC3339))
}

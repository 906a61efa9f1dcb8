package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// AlertSeverity уровень серьезности оповещения KCDC.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

// LifecycleCategory подкатегория жизненного события, определяет эмоцию персонажа.
type LifecycleCategory string

const (
	LifecycleBirthday    LifecycleCategory = "birthday"
	LifecycleAnniversary LifecycleCategory = "anniversary"
	LifecycleMemorial    LifecycleCategory = "memorial"
)

// IsValid проверяет, что категория известна.
func (c LifecycleCategory) IsValid() bool {
	switch c {
	case LifecycleBirthday, LifecycleAnniversary, LifecycleMemorial:
		return true
	}
	return false
}

// MedicationPayload - данные события приема лекарства.
type MedicationPayload struct {
	PrescriptionID  string    `json:"prescription_id"`
	MedicationName  string    `json:"medication_name"`
	DoseTime        time.Time `json:"dose_time"`
	Overdue         bool      `json:"overdue"`
	DialogueMessage string    `json:"dialogue_message,omitempty"` // Предварительно отрендеренная реплика, если есть
}

// FeedingPayload - данные события кормления ребенка.
type FeedingPayload struct {
	FamilyMemberName string    `json:"family_member_name"`
	LastFeedingTime  time.Time `json:"last_feeding_time"`
	CycleHours       int       `json:"cycle_hours"`
	DialogueMessage  string    `json:"dialogue_message,omitempty"`
}

// CheckupPayload - данные события медосмотра или прививки (общая форма).
type CheckupPayload struct {
	ScheduleID      string `json:"schedule_id"`
	Title           string `json:"title"` // Название осмотра или вакцины
	DaysUntil       int    `json:"days_until"`
	DialogueMessage string `json:"dialogue_message,omitempty"`
}

// AlertPayload - данные события оповещения KCDC.
type AlertPayload struct {
	AlertID         string        `json:"alert_id"`
	Title           string        `json:"title"`
	Severity        AlertSeverity `json:"severity"`
	Region          string        `json:"region,omitempty"`
	DialogueMessage string        `json:"dialogue_message,omitempty"`
}

// LifecyclePayload - данные жизненного события.
type LifecyclePayload struct {
	Category        LifecycleCategory `json:"category"`
	Title           string            `json:"title"`
	DialogueMessage string            `json:"dialogue_message,omitempty"`
}

// EventPayload объединяет все варианты payload. Ровно одно поле должно быть
// заполнено, и оно должно соответствовать EventType события.
// Декодирование всегда идет через DecodePayload, чтобы switch по типам
// оставался исчерпывающим в одном месте.
type EventPayload struct {
	Medication *MedicationPayload
	Feeding    *FeedingPayload
	Checkup    *CheckupPayload
	Alert      *AlertPayload
	Lifecycle  *LifecyclePayload
}

// PreRenderedDialogue возвращает заранее отрендеренную реплику, если она есть.
func (p *EventPayload) PreRenderedDialogue() string {
	switch {
	case p.Medication != nil:
		return p.Medication.DialogueMessage
	case p.Feeding != nil:
		return p.Feeding.DialogueMessage
	case p.Checkup != nil:
		return p.Checkup.DialogueMessage
	case p.Alert != nil:
		return p.Alert.DialogueMessage
	case p.Lifecycle != nil:
		return p.Lifecycle.DialogueMessage
	}
	return ""
}

// EncodePayload сериализует вариант payload для хранения в event_data (jsonb).
func EncodePayload(eventType EventType, payload EventPayload) (json.RawMessage, error) {
	var v any
	switch eventType {
	case EventTypeMedication:
		if payload.Medication == nil {
			return nil, fmt.Errorf("%w: missing medication variant", ErrInvalidPayload)
		}
		v = payload.Medication
	case EventTypeBabyFeeding:
		if payload.Feeding == nil {
			return nil, fmt.Errorf("%w: missing feeding variant", ErrInvalidPayload)
		}
		v = payload.Feeding
	case EventTypeHealthCheckup, EventTypeVaccination:
		if payload.Checkup == nil {
			return nil, fmt.Errorf("%w: missing checkup variant", ErrInvalidPayload)
		}
		v = payload.Checkup
	case EventTypeKCDCAlert:
		if payload.Alert == nil {
			return nil, fmt.Errorf("%w: missing alert variant", ErrInvalidPayload)
		}
		v = payload.Alert
	case EventTypeLifecycleEvent:
		if payload.Lifecycle == nil {
			return nil, fmt.Errorf("%w: missing lifecycle variant", ErrInvalidPayload)
		}
		v = payload.Lifecycle
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidPayload, eventType)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return data, nil
}

// DecodePayload разбирает event_data в вариант, соответствующий типу события.
func DecodePayload(eventType EventType, data json.RawMessage) (EventPayload, error) {
	var payload EventPayload
	if len(data) == 0 {
		return payload, fmt.Errorf("%w: empty event data for %s", ErrInvalidPayload, eventType)
	}

	var err error
	switch eventType {
	case EventTypeMedication:
		payload.Medication = &MedicationPayload{}
		err = json.Unmarshal(data, payload.Medication)
	case EventTypeBabyFeeding:
		payload.Feeding = &FeedingPayload{}
		err = json.Unmarshal(data, payload.Feeding)
	case EventTypeHealthCheckup, EventTypeVaccination:
		payload.Checkup = &CheckupPayload{}
		err = json.Unmarshal(data, payload.Checkup)
	case EventTypeKCDCAlert:
		payload.Alert = &AlertPayload{}
		err = json.Unmarshal(data, payload.Alert)
	case EventTypeLifecycleEvent:
		payload.Lifecycle = &LifecyclePayload{}
		err = json.Unmarshal(data, payload.Lifecycle)
	default:
		return payload, fmt.Errorf("%w: unknown event type %q", ErrInvalidPayload, eventType)
	}
	if err != nil {
		return EventPayload{}, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, eventType, err)
	}
	return payload, nil
}

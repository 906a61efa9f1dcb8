// Package dialogue turns game events into character lines and emotion tags.
// The resolver is pure and side-effect-free: it may be called repeatedly for
// re-rendering without touching any persisted state.
package dialogue

import (
	"math/rand"
	"strings"
	"time"

	"character-game-server/shared/models"
)

// Rand is the injected random source for pool selection. Tests supply a
// deterministic implementation to assert exact output.
type Rand interface {
	Intn(n int) int
}

// Resolver выбирает реплику персонажа и тег эмоции для события.
type Resolver struct {
	rng Rand
}

// NewResolver создает резолвер. При rng == nil используется обычный
// math/rand источник.
func NewResolver(rng Rand) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Resolver{rng: rng}
}

// Resolve возвращает реплику и эмоцию для (тип события, payload).
// Предварительно отрендеренная реплика из payload всегда выигрывает у пула;
// эмоция при этом все равно берется из детерминированной таблицы.
func (r *Resolver) Resolve(eventType models.EventType, payload models.EventPayload) models.DialogueLine {
	emotion := emotionFor(eventType, payload)

	if pre := payload.PreRenderedDialogue(); pre != "" {
		return models.DialogueLine{Message: pre, Emotion: emotion}
	}

	pool, ok := dialoguePools[eventType]
	if !ok || len(pool) == 0 {
		return models.DialogueLine{Message: fallbackLine, Emotion: emotion}
	}

	chosen := r.pick(pool)
	return models.DialogueLine{
		Message: substitute(chosen, payload),
		Emotion: emotion,
	}
}

// pick выбирает шаблон пропорционально весам.
func (r *Resolver) pick(pool []template) string {
	total := 0
	for _, t := range pool {
		total += t.weight
	}
	n := r.rng.Intn(total)
	for _, t := range pool {
		n -= t.weight
		if n < 0 {
			return t.text
		}
	}
	return pool[len(pool)-1].text
}

// substitute подставляет значения payload в плейсхолдеры шаблона.
func substitute(text string, payload models.EventPayload) string {
	pairs := []string{}
	switch {
	case payload.Medication != nil:
		pairs = append(pairs, "{medication}", payload.Medication.MedicationName)
	case payload.Feeding != nil:
		pairs = append(pairs, "{name}", payload.Feeding.FamilyMemberName)
	case payload.Checkup != nil:
		pairs = append(pairs, "{title}", payload.Checkup.Title)
	case payload.Alert != nil:
		pairs = append(pairs, "{title}", payload.Alert.Title)
	case payload.Lifecycle != nil:
		pairs = append(pairs, "{title}", payload.Lifecycle.Title)
	}
	if len(pairs) == 0 {
		return text
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// emotionFor - детерминированная таблица эмоций по типу события.
func emotionFor(eventType models.EventType, payload models.EventPayload) models.Emotion {
	switch eventType {
	case models.EventTypeMedication:
		return models.EmotionWorried
	case models.EventTypeBabyFeeding:
		return models.EmotionSad
	case models.EventTypeKCDCAlert:
		if payload.Alert != nil && payload.Alert.Severity == models.SeverityCritical {
			return models.EmotionWorried
		}
		return models.EmotionNeutral
	case models.EventTypeLifecycleEvent:
		if payload.Lifecycle != nil {
			switch payload.Lifecycle.Category {
			case models.LifecycleBirthday:
				return models.EmotionExcited
			case models.LifecycleMemorial:
				return models.EmotionWorried
			}
		}
		return models.EmotionNeutral
	}
	return models.EmotionNeutral
}

// Package scheduler материализует кандидатов доменных адаптеров в pending
// события. Запуск идемпотентен: дедупликация по натуральному ключу среди
// нетерминальных событий позволяет дергать планировщик на каждой загрузке
// страницы, по таймеру и из нескольких процессов одновременно.
package scheduler

import (
	"context"
	"errors"
	"time"

	"character-game-server/internal/adapter"
	"character-game-server/internal/config"
	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunResult - сводка одного запуска для логов и наблюдаемости.
type RunResult struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Scheduler прогоняет адаптеры и вставляет новых кандидатов.
type Scheduler struct {
	adapters []adapter.SourceAdapter
	events   interfaces.GameEventRepository
	rules    *config.GameRules
	logger   *zap.Logger
	now      func() time.Time
}

// New создает планировщик поверх набора адаптеров.
func New(adapters []adapter.SourceAdapter, events interfaces.GameEventRepository, rules *config.GameRules, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		adapters: adapters,
		events:   events,
		rules:    rules,
		logger:   logger.Named("Scheduler"),
		now:      time.Now,
	}
}

// Run выполняет один проход планирования для области (пользователь, член
// семьи). Падение одного адаптера не блокирует остальные: ошибка логируется,
// проход продолжается. Ошибка возвращается только если не удалось прочитать
// уже существующие события - без этого дедупликация невозможна.
func (s *Scheduler) Run(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) (RunResult, error) {
	var result RunResult

	existing, err := s.events.ListUnresolved(ctx, userID, familyMemberID)
	if err != nil {
		s.logger.Error("Failed to list unresolved events", zap.Stringer("userID", userID), zap.Error(err))
		return result, err
	}

	unresolvedKeys := make(map[string]struct{}, len(existing))
	for _, ev := range existing {
		unresolvedKeys[ev.NaturalKey] = struct{}{}
	}

	for _, src := range s.adapters {
		candidates, err := src.GenerateCandidates(ctx, userID, familyMemberID)
		if err != nil {
			// Изоляция частичных сбоев: один сломанный адаптер не должен
			// останавливать планирование остальных
			adapterFailuresTotal.WithLabelValues(src.Name()).Inc()
			s.logger.Warn("Adapter failed, continuing with the rest",
				zap.String("adapter", src.Name()), zap.Stringer("userID", userID), zap.Error(err))
			continue
		}

		for i := range candidates {
			outcome := s.materialize(ctx, &candidates[i], unresolvedKeys)
			switch outcome {
			case outcomeGenerated:
				candidatesGeneratedTotal.WithLabelValues(src.Name()).Inc()
				result.Generated++
			case outcomeSkipped:
				candidatesSkippedTotal.WithLabelValues(src.Name()).Inc()
				result.Skipped++
			case outcomeFailed:
				candidatesFailedTotal.WithLabelValues(src.Name()).Inc()
				result.Failed++
			}
		}
	}

	s.logger.Info("Scheduling run finished",
		zap.Stringer("userID", userID),
		zap.Int("generated", result.Generated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, nil
}

type materializeOutcome int

const (
	outcomeGenerated materializeOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// materialize вставляет одного кандидата, поддерживая набор ключей в
// актуальном состоянии в рамках прохода.
func (s *Scheduler) materialize(ctx context.Context, c *models.GameEventCandidate, unresolvedKeys map[string]struct{}) materializeOutcome {
	if err := c.Validate(); err != nil {
		s.logger.Warn("Rejecting malformed candidate", zap.Error(err))
		return outcomeFailed
	}

	if _, exists := unresolvedKeys[c.NaturalKey]; exists {
		return outcomeSkipped
	}

	now := s.now()
	event := &models.GameEvent{
		ID:             uuid.New(),
		UserID:         c.UserID,
		FamilyMemberID: c.FamilyMemberID,
		EventType:      c.EventType,
		EventData:      c.EventData,
		ScheduledTime:  c.ScheduledTime,
		ValidUntil:     c.ValidUntil,
		Priority:       c.Priority,
		Status:         models.EventStatusPending,
		NaturalKey:     c.NaturalKey,
		DomainRecordID: c.DomainRecordID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.events.Insert(ctx, event); err != nil {
		if errors.Is(err, models.ErrDuplicateNaturalKey) {
			// Параллельный запуск успел первым - это штатный no-op
			unresolvedKeys[c.NaturalKey] = struct{}{}
			return outcomeSkipped
		}
		s.logger.Error("Failed to insert event",
			zap.String("naturalKey", c.NaturalKey), zap.Error(err))
		return outcomeFailed
	}

	unresolvedKeys[c.NaturalKey] = struct{}{}
	return outcomeGenerated
}

// EnqueueLifecycleEvent ставит жизненное событие (день рождения, годовщину)
// напрямую, минуя адаптеры: у таких событий нет доменной таблицы-источника.
func (s *Scheduler) EnqueueLifecycleEvent(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID, category models.LifecycleCategory, title string, date time.Time) error {
	data, err := models.EncodePayload(models.EventTypeLifecycleEvent, models.EventPayload{
		Lifecycle: &models.LifecyclePayload{Category: category, Title: title},
	})
	if err != nil {
		return err
	}

	validUntil := date.Add(s.rules.ValidityWindow(models.EventTypeLifecycleEvent))
	candidate := models.GameEventCandidate{
		UserID:         userID,
		FamilyMemberID: familyMemberID,
		EventType:      models.EventTypeLifecycleEvent,
		EventData:      data,
		ScheduledTime:  date,
		ValidUntil:     &validUntil,
		Priority:       models.PriorityNormal,
		NaturalKey:     models.BuildNaturalKey(userID, familyMemberID, models.EventTypeLifecycleEvent, string(category)+":"+title, date),
		DomainRecordID: string(category) + ":" + title,
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	existing, err := s.events.ListUnresolved(ctx, userID, familyMemberID)
	if err != nil {
		return err
	}
	keys := make(map[string]struct{}, len(existing))
	for _, ev := range existing {
		keys[ev.NaturalKey] = struct{}{}
	}

	if s.materialize(ctx, &candidate, keys) == outcomeFailed {
		return models.ErrStore
	}
	return nil
}

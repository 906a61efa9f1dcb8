package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"character-game-server/internal/config"
	"character-game-server/internal/dialogue"
	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"
	"character-game-server/shared/notifications"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GameEventService - менеджер событий и конвейер завершения/наград.
// Опыт из завершений проходит через общий конвейер applyExperience,
// как и опыт из health score в ProgressionService.
type GameEventService struct {
	events      interfaces.GameEventRepository
	progression interfaces.ProgressionRepository
	publisher   interfaces.GameNotificationPublisher // может быть nil (уведомления выключены)
	resolver    *dialogue.Resolver
	rules       *config.GameRules
	logger      *zap.Logger
	now         func() time.Time
}

// NewGameEventService создает сервис событий.
func NewGameEventService(
	events interfaces.GameEventRepository,
	progression interfaces.ProgressionRepository,
	publisher interfaces.GameNotificationPublisher,
	resolver *dialogue.Resolver,
	rules *config.GameRules,
	logger *zap.Logger,
) *GameEventService {
	return &GameEventService{
		events:      events,
		progression: progression,
		publisher:   publisher,
		resolver:    resolver,
		rules:       rules,
		logger:      logger.Named("GameEventService"),
		now:         time.Now,
	}
}

// GetActiveEvents возвращает активные события области, отсортированные по
// приоритету (убывание), затем по scheduled_time (возрастание). В рамках того
// же чтения pending события с наступившим scheduled_time лениво повышаются до
// active, а active события с истекшим окном валидности - до expired (без
// награды). Пустой список - нормальный результат, не ошибка.
func (s *GameEventService) GetActiveEvents(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]*models.GameEvent, error) {
	rows, err := s.events.ListPendingAndActive(ctx, userID, familyMemberID)
	if err != nil {
		s.logger.Error("Failed to list events", zap.Stringer("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	now := s.now()
	active := make([]*models.GameEvent, 0, len(rows))
	for _, ev := range rows {
		switch ev.Status {
		case models.EventStatusPending:
			if ev.ScheduledTime.After(now) {
				continue // еще не время показывать
			}
			if !s.promote(ctx, ev) {
				continue
			}
		case models.EventStatusActive:
			// nothing, проверка истечения ниже
		default:
			continue
		}

		if s.expireIfStale(ctx, ev, now) {
			continue
		}
		active = append(active, ev)
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority.Weight() != active[j].Priority.Weight() {
			return active[i].Priority.Weight() > active[j].Priority.Weight()
		}
		return active[i].ScheduledTime.Before(active[j].ScheduledTime)
	})

	return active, nil
}

// promote выполняет переход pending→active. Результат записи не блокирует
// чтение: при сбое стора событие все равно отдается как active, при проигрыше
// гонки гварда - пропускается (его судьбу решил другой писатель).
func (s *GameEventService) promote(ctx context.Context, ev *models.GameEvent) bool {
	ok, err := s.events.TransitionStatus(ctx, ev.ID, models.EventStatusPending, models.EventStatusActive, nil)
	if err != nil {
		s.logger.Warn("Promotion write failed, surfacing event anyway",
			zap.Stringer("eventID", ev.ID), zap.Error(err))
		ev.Status = models.EventStatusActive
		return true
	}
	if !ok {
		return false
	}

	ev.Status = models.EventStatusActive
	s.notifyActivation(ctx, ev)
	return true
}

// expireIfStale переводит событие с истекшим окном в expired.
// Истекшее событие исключается из выдачи и не дает награды.
func (s *GameEventService) expireIfStale(ctx context.Context, ev *models.GameEvent, now time.Time) bool {
	if ev.ValidUntil == nil || now.Before(*ev.ValidUntil) {
		return false
	}

	ok, err := s.events.TransitionStatus(ctx, ev.ID, models.EventStatusActive, models.EventStatusExpired, nil)
	if err != nil {
		s.logger.Warn("Expiry write failed", zap.Stringer("eventID", ev.ID), zap.Error(err))
	} else if ok {
		expirationsTotal.Inc()
	}
	// Из выдачи событие убирается в любом случае: показывать просроченное нельзя
	ev.Status = models.EventStatusExpired
	return true
}

// CompleteEvent завершает активное событие от имени userID и начисляет
// награду. Чужое событие отклоняется с ErrEventNotFound до любых записей:
// завершение - явное действие владельца, посторонний не должен ни закрыть
// обязательство, ни узнать о его существовании.
// Завершение НЕ идемпотентно: повторная попытка по уже терминальному событию
// отклоняется с ErrInvalidEventState, чтобы вызывающий мог отличить
// "уже сделано" от "получилось". Сбой начисления награды не откатывает
// зафиксированное завершение - обязательство по уходу не должно остаться
// неподтвержденным из-за ошибки скоринга.
func (s *GameEventService) CompleteEvent(ctx context.Context, eventID, userID uuid.UUID) (*models.CompletionResult, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) || errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if ev.UserID != userID {
		s.logger.Warn("Completion attempt on another user's event",
			zap.Stringer("eventID", eventID), zap.Stringer("userID", userID))
		return nil, models.ErrEventNotFound
	}

	now := s.now()

	if ev.Status == models.EventStatusActive && ev.ValidUntil != nil && !now.Before(*ev.ValidUntil) {
		// Истечение имеет приоритет над завершением
		s.expireIfStale(ctx, ev, now)
		return nil, models.ErrInvalidEventState
	}
	if ev.Status != models.EventStatusActive {
		return nil, models.ErrInvalidEventState
	}

	ok, err := s.events.TransitionStatus(ctx, ev.ID, models.EventStatusActive, models.EventStatusCompleted, &now)
	if err != nil {
		return nil, fmt.Errorf("failed to complete event: %w", err)
	}
	if !ok {
		// Гвард не сработал: кто-то успел раньше (двойной клик, вторая сессия)
		return nil, models.ErrInvalidEventState
	}

	ev.Status = models.EventStatusCompleted
	ev.CompletedAt = &now
	completionsTotal.WithLabelValues(string(ev.EventType)).Inc()

	result := &models.CompletionResult{Event: ev}
	if err := s.applyReward(ctx, ev, result); err != nil {
		// Завершение уже зафиксировано - фиксируем сбой награды отдельно
		rewardApplyFailuresTotal.Inc()
		s.logger.Error("Reward application failed after committed completion",
			zap.Stringer("eventID", ev.ID), zap.Error(err))
		result.RewardApplyFailed = true
	}

	return result, nil
}

// applyReward начисляет опыт/очки через общий конвейер applyExperience.
// Чтение-модификация-запись идет сразу за гвардом завершения: завершения -
// единственные писатели опыта, и гвард их уже сериализовал.
func (s *GameEventService) applyReward(ctx context.Context, ev *models.GameEvent, result *models.CompletionResult) error {
	reward := s.rules.RewardFor(ev.EventType, ev.Priority)
	result.ExperienceEarned = reward.Experience
	result.PointsEarned = reward.Points

	state, err := s.progression.Get(ctx, ev.UserID, ev.FamilyMemberID)
	if err != nil {
		if !errors.Is(err, models.ErrStateNotFound) {
			return fmt.Errorf("failed to load progression state: %w", err)
		}
		state = &models.ProgressionState{UserID: ev.UserID, FamilyMemberID: ev.FamilyMemberID}
	}

	outcome := applyExperience(state, reward.Experience, reward.Points, s.rules)
	if outcome.LeveledUp {
		levelUpsTotal.Inc()
		result.LeveledUp = true
		result.NewLevel = outcome.NewLevel
		result.LevelUpBonus = outcome.BonusPoints
		result.UnlockedBadges = outcome.UnlockedBadges
	}

	state.UpdatedAt = s.now()
	if err := s.progression.Upsert(ctx, state); err != nil {
		return fmt.Errorf("failed to store progression state: %w", err)
	}

	if outcome.LeveledUp {
		s.notifyLevelUp(ctx, state, outcome.NewLevel)
	}
	return nil
}

// CancelEventsForRecord переводит все нетерминальные события деактивированной
// доменной записи в cancelled. Обычный переход состояния, без награды.
func (s *GameEventService) CancelEventsForRecord(ctx context.Context, domainRecordID string) (int64, error) {
	cancelled, err := s.events.CancelByDomainRecord(ctx, domainRecordID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel events for record %s: %w", domainRecordID, err)
	}
	if cancelled > 0 {
		s.logger.Info("Cancelled events for deactivated domain record",
			zap.String("domainRecordID", domainRecordID), zap.Int64("count", cancelled))
	}
	return cancelled, nil
}

// ResolveDialogue возвращает реплику и эмоцию персонажа для события.
func (s *GameEventService) ResolveDialogue(ev *models.GameEvent) models.DialogueLine {
	payload, err := models.DecodePayload(ev.EventType, ev.EventData)
	if err != nil {
		s.logger.Warn("Failed to decode event payload for dialogue",
			zap.Stringer("eventID", ev.ID), zap.Error(err))
		return models.DialogueLine{Emotion: models.EmotionNeutral}
	}
	return s.resolver.Resolve(ev.EventType, payload)
}

// notifyActivation отправляет описание активации слою доставки. Сбой
// публикации не влияет на чтение - только лог.
func (s *GameEventService) notifyActivation(ctx context.Context, ev *models.GameEvent) {
	if s.publisher == nil {
		return
	}
	line := s.ResolveDialogue(ev)
	payload, err := notifications.BuildEventActivatedPayload(ev, line)
	if err != nil {
		s.logger.Warn("Failed to build activation payload", zap.Error(err))
		return
	}
	if err := s.publisher.PublishGameNotification(ctx, *payload); err != nil {
		s.logger.Warn("Failed to publish activation notification",
			zap.Stringer("eventID", ev.ID), zap.Error(err))
	}
}

func (s *GameEventService) notifyLevelUp(ctx context.Context, state *models.ProgressionState, newLevel int) {
	if s.publisher == nil {
		return
	}
	payload, err := notifications.BuildLevelUpPayload(state, newLevel, s.rules.LevelUpBonusPoints)
	if err != nil {
		s.logger.Warn("Failed to build level up payload", zap.Error(err))
		return
	}
	if err := s.publisher.PublishGameNotification(ctx, *payload); err != nil {
		s.logger.Warn("Failed to publish level up notification",
			zap.Stringer("userID", state.UserID), zap.Error(err))
	}
}

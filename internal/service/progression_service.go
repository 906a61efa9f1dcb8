package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"character-game-server/internal/config"
	"character-game-server/internal/leveling"
	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"
	"character-game-server/shared/notifications"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProgressionView - состояние прогрессии вместе с производными полями уровня.
// Уровень никогда не хранится: он всегда выводится из total_experience.
type ProgressionView struct {
	UserID          uuid.UUID  `json:"user_id"`
	FamilyMemberID  *uuid.UUID `json:"family_member_id,omitempty"`
	TotalExperience int        `json:"total_experience"`
	Level           int        `json:"level"`
	ExpInLevel      int        `json:"exp_in_level"`
	ExpToNextLevel  int        `json:"exp_to_next_level"`
	Points          int        `json:"points"`
	Badges          []string   `json:"badges"`
}

// ProgressionService - читающая поверхность прогрессии плюс начисление опыта
// из источников, не связанных с событиями (health score).
type ProgressionService struct {
	progression interfaces.ProgressionRepository
	cache       interfaces.Cache                     // может быть nil (кэш выключен)
	publisher   interfaces.GameNotificationPublisher // может быть nil (уведомления выключены)
	rules       *config.GameRules
	logger      *zap.Logger
	now         func() time.Time
}

// NewProgressionService создает сервис прогрессии.
func NewProgressionService(progression interfaces.ProgressionRepository, cache interfaces.Cache, publisher interfaces.GameNotificationPublisher, rules *config.GameRules, logger *zap.Logger) *ProgressionService {
	return &ProgressionService{
		progression: progression,
		cache:       cache,
		publisher:   publisher,
		rules:       rules,
		logger:      logger.Named("ProgressionService"),
		now:         time.Now,
	}
}

func progressionCacheKey(userID uuid.UUID, familyMemberID *uuid.UUID) string {
	member := "self"
	if familyMemberID != nil {
		member = familyMemberID.String()
	}
	return fmt.Sprintf("game:progression:%s:%s", userID, member)
}

// GetProgressionState возвращает представление прогрессии области.
// Отсутствие записи - не ошибка: новый персонаж начинает с нулевого состояния.
func (s *ProgressionService) GetProgressionState(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) (*ProgressionView, error) {
	cacheKey := progressionCacheKey(userID, familyMemberID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var view ProgressionView
			if err := json.Unmarshal(raw, &view); err == nil {
				return &view, nil
			}
			// Битое значение в кэше игнорируем и перечитываем из стора
		}
	}

	state, err := s.progression.Get(ctx, userID, familyMemberID)
	if err != nil {
		if !errors.Is(err, models.ErrStateNotFound) {
			s.logger.Error("Failed to load progression state", zap.Stringer("userID", userID), zap.Error(err))
			return nil, fmt.Errorf("failed to load progression state: %w", err)
		}
		state = &models.ProgressionState{UserID: userID, FamilyMemberID: familyMemberID}
	}

	info := leveling.LevelOf(state.TotalExperience)
	view := &ProgressionView{
		UserID:          state.UserID,
		FamilyMemberID:  state.FamilyMemberID,
		TotalExperience: state.TotalExperience,
		Level:           info.Level,
		ExpInLevel:      info.ExpInLevel,
		ExpToNextLevel:  info.ExpToNextLevel,
		Points:          state.Points,
		Badges:          state.Badges,
	}
	if view.Badges == nil {
		view.Badges = []string{}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(view); err == nil {
			ttl := time.Duration(s.rules.CacheTTLProgressionSeconds) * time.Second
			if err := s.cache.Set(ctx, cacheKey, raw, ttl); err != nil {
				s.logger.Debug("Failed to cache progression view", zap.Error(err))
			}
		}
	}

	return view, nil
}

// AddHealthScoreExperience начисляет опыт из оценки здоровья:
// experience = floor(healthScore * 10). Пересечение уровней проходит через
// тот же конвейер, что и завершение события: бонус, значки и уведомление
// не зависят от того, каким путем пришел опыт. Возвращает обновленное
// представление.
func (s *ProgressionService) AddHealthScoreExperience(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID, healthScore float64) (*ProgressionView, error) {
	delta := leveling.ExperienceFromHealthScore(healthScore)
	if delta <= 0 {
		return s.GetProgressionState(ctx, userID, familyMemberID)
	}

	state, err := s.progression.Get(ctx, userID, familyMemberID)
	if err != nil {
		if !errors.Is(err, models.ErrStateNotFound) {
			return nil, fmt.Errorf("failed to load progression state: %w", err)
		}
		state = &models.ProgressionState{UserID: userID, FamilyMemberID: familyMemberID}
	}

	outcome := applyExperience(state, delta, 0, s.rules)
	state.UpdatedAt = s.now()
	if err := s.progression.Upsert(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to store progression state: %w", err)
	}

	if outcome.LeveledUp {
		levelUpsTotal.Inc()
		s.notifyLevelUp(ctx, state, outcome.NewLevel)
	}

	s.InvalidateScope(ctx, userID, familyMemberID)

	info := leveling.LevelOf(state.TotalExperience)
	return &ProgressionView{
		UserID:          state.UserID,
		FamilyMemberID:  state.FamilyMemberID,
		TotalExperience: state.TotalExperience,
		Level:           info.Level,
		ExpInLevel:      info.ExpInLevel,
		ExpToNextLevel:  info.ExpToNextLevel,
		Points:          state.Points,
		Badges:          state.Badges,
	}, nil
}

func (s *ProgressionService) notifyLevelUp(ctx context.Context, state *models.ProgressionState, newLevel int) {
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

// InvalidateScope сбрасывает кэш прогрессии области (вызывается после наград).
func (s *ProgressionService) InvalidateScope(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, progressionCacheKey(userID, familyMemberID)); err != nil {
		s.logger.Debug("Failed to invalidate progression cache", zap.Error(err))
	}
}

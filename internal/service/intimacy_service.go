package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"character-game-server/internal/config"
	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplyInteraction - чистая функция обновления шкалы близости.
// Возвращает новое состояние, не трогая хранилище: дельта по типу
// взаимодействия, зажим в [0, MaxScore], порядковый уровень по порогам.
func ApplyInteraction(current int, interaction models.InteractionType, rules *config.IntimacyRules, at time.Time) (models.IntimacyUpdate, error) {
	var delta int
	switch interaction {
	case models.InteractionHealthHelp:
		delta = rules.HealthHelpDelta
	case models.InteractionChallengeParticipation:
		delta = rules.ChallengeParticipationDelta
	case models.InteractionDailyInteraction:
		delta = rules.DailyInteractionDelta
	default:
		return models.IntimacyUpdate{}, ErrUnknownInteractionType
	}

	score := current + delta
	if score > rules.MaxScore {
		score = rules.MaxScore
	}
	if score < 0 {
		score = 0
	}

	return models.IntimacyUpdate{
		IntimacyScore:     score,
		IntimacyLevel:     intimacyLevelOf(score, rules.LevelThresholds),
		LastInteractionAt: at,
	}, nil
}

// intimacyLevelOf возвращает порядковый номер наибольшего порога, не
// превышающего score. Пороги отсортированы по возрастанию.
func intimacyLevelOf(score int, thresholds []int) int {
	level := 1
	for i, threshold := range thresholds {
		if score >= threshold {
			level = i + 1
		}
	}
	return level
}

// IntimacyService применяет взаимодействия к персистентному состоянию близости.
type IntimacyService struct {
	intimacy interfaces.IntimacyRepository
	rules    *config.GameRules
	logger   *zap.Logger
	now      func() time.Time
}

// NewIntimacyService создает сервис близости.
func NewIntimacyService(intimacy interfaces.IntimacyRepository, rules *config.GameRules, logger *zap.Logger) *IntimacyService {
	return &IntimacyService{
		intimacy: intimacy,
		rules:    rules,
		logger:   logger.Named("IntimacyService"),
		now:      time.Now,
	}
}

// RecordInteraction применяет одно взаимодействие и сохраняет результат.
// Конкурирующие записи разрешаются по принципу "последняя запись побеждает".
func (s *IntimacyService) RecordInteraction(ctx context.Context, userID uuid.UUID, familyMemberID uuid.UUID, interaction models.InteractionType) (*models.IntimacyState, error) {
	if !interaction.IsValid() {
		return nil, ErrUnknownInteractionType
	}

	state, err := s.intimacy.Get(ctx, userID, familyMemberID)
	if err != nil {
		if !errors.Is(err, models.ErrStateNotFound) {
			s.logger.Error("Failed to load intimacy state", zap.Stringer("userID", userID), zap.Error(err))
			return nil, fmt.Errorf("failed to load intimacy state: %w", err)
		}
		state = &models.IntimacyState{UserID: userID, FamilyMemberID: familyMemberID}
	}

	update, err := ApplyInteraction(state.IntimacyScore, interaction, &s.rules.Intimacy, s.now())
	if err != nil {
		return nil, err
	}

	state.IntimacyScore = update.IntimacyScore
	state.IntimacyLevel = update.IntimacyLevel
	state.LastInteractionAt = &update.LastInteractionAt
	state.UpdatedAt = s.now()

	if err := s.intimacy.Upsert(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to store intimacy state: %w", err)
	}

	s.logger.Debug("Interaction recorded",
		zap.Stringer("userID", userID),
		zap.String("interaction", string(interaction)),
		zap.Int("score", state.IntimacyScore),
		zap.Int("level", state.IntimacyLevel))

	return state, nil
}

// GetIntimacyState возвращает состояние близости области. Отсутствие
// записи трактуется как нулевое состояние первого уровня.
func (s *IntimacyService) GetIntimacyState(ctx context.Context, userID uuid.UUID, familyMemberID uuid.UUID) (*models.IntimacyState, error) {
	state, err := s.intimacy.Get(ctx, userID, familyMemberID)
	if err != nil {
		if !errors.Is(err, models.ErrStateNotFound) {
			return nil, fmt.Errorf("failed to load intimacy state: %w", err)
		}
		return &models.IntimacyState{
			UserID:         userID,
			FamilyMemberID: familyMemberID,
			IntimacyLevel:  intimacyLevelOf(0, s.rules.Intimacy.LevelThresholds),
		}, nil
	}
	return state, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"character-game-server/internal/config"
	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"

	"go.uber.org/zap"
)

// Rank сортирует участников по убыванию счета и проставляет ранги 1..N.
// Сортировка стабильная: при равном счете порядок входа сохраняется,
// ранги при этом различны. Возвращается не больше topN записей.
func Rank(entries []models.LeaderboardEntry, topN int) []models.LeaderboardEntry {
	ranked := make([]models.LeaderboardEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// FindRank возвращает запись участника с его рангом в полном списке,
// даже если он не попал в верхний срез. Второй результат false, если
// участник не найден.
func FindRank(entries []models.LeaderboardEntry, participantID string) (models.LeaderboardEntry, bool) {
	ranked := Rank(entries, 0)
	for _, entry := range ranked {
		if entry.ParticipantID == participantID {
			return entry, true
		}
	}
	return models.LeaderboardEntry{}, false
}

// LeaderboardService строит представления таблицы лидеров поверх
// снимков счетов из хранилища прогрессии.
type LeaderboardService struct {
	progression interfaces.ProgressionRepository
	cache       interfaces.Cache // может быть nil
	rules       *config.GameRules
	logger      *zap.Logger
}

// NewLeaderboardService создает сервис таблицы лидеров.
func NewLeaderboardService(progression interfaces.ProgressionRepository, cache interfaces.Cache, rules *config.GameRules, logger *zap.Logger) *LeaderboardService {
	return &LeaderboardService{
		progression: progression,
		cache:       cache,
		rules:       rules,
		logger:      logger.Named("LeaderboardService"),
	}
}

func leaderboardCacheKey(by models.LeaderboardType, topN int) string {
	return fmt.Sprintf("game:leaderboard:%s:%d", by, topN)
}

// GetLeaderboard возвращает верхние topN записей по выбранной метрике.
// Если currentParticipantID не пуст, его запись прикладывается отдельно
// с настоящим рангом по полному списку.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, by models.LeaderboardType, topN int, currentParticipantID string) (*models.LeaderboardView, error) {
	if !by.IsValid() {
		return nil, ErrUnknownLeaderboardType
	}

	entries, err := s.loadScores(ctx, by)
	if err != nil {
		return nil, err
	}

	view := &models.LeaderboardView{
		Type:    by,
		Entries: Rank(entries, topN),
	}

	if currentParticipantID != "" {
		if entry, ok := FindRank(entries, currentParticipantID); ok {
			view.CurrentUser = &entry
		}
	}

	return view, nil
}

// loadScores читает снимок счетов, по возможности из кэша. Кэшируется
// весь неранжированный список: ранги дешево пересчитать, а срезы с
// разным topN делят одну запись кэша.
func (s *LeaderboardService) loadScores(ctx context.Context, by models.LeaderboardType) ([]models.LeaderboardEntry, error) {
	cacheKey := leaderboardCacheKey(by, 0)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var entries []models.LeaderboardEntry
			if err := json.Unmarshal(raw, &entries); err == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.progression.ListScores(ctx, by)
	if err != nil {
		s.logger.Error("Failed to load leaderboard scores", zap.String("type", string(by)), zap.Error(err))
		return nil, fmt.Errorf("failed to load leaderboard scores: %w", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(entries); err == nil {
			ttl := time.Duration(s.rules.CacheTTLLeaderboardSeconds) * time.Second
			if err := s.cache.Set(ctx, cacheKey, raw, ttl); err != nil {
				s.logger.Debug("Failed to cache leaderboard snapshot", zap.Error(err))
			}
		}
	}

	return entries, nil
}

package database

import (
	"context"
	"errors"
	"fmt"

	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	getProgressionQuery = `
        SELECT user_id, family_member_id, total_experience, points, badges, updated_at
        FROM progression_state
        WHERE user_id = $1 AND family_member_id IS NOT DISTINCT FROM $2
    `

	// scope_key - сгенерированная колонка COALESCE(family_member_id::text, 'self'),
	// дает рабочий уникальный ключ при NULL family_member_id
	upsertProgressionQuery = `
        INSERT INTO progression_state (user_id, family_member_id, total_experience, points, badges, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id, scope_key) DO UPDATE SET
            total_experience = EXCLUDED.total_experience,
            points = EXCLUDED.points,
            badges = EXCLUDED.badges,
            updated_at = EXCLUDED.updated_at
    `

	// Порядок по created_at фиксирует порядок "первым появился" для
	// детерминированного разрешения ничьих на стороне сервиса
	listExperienceScoresQuery = `
        SELECT COALESCE(ps.family_member_id::text, ps.user_id::text) AS participant_id,
               COALESCE(fp.display_name, '우리 가족') AS display_name,
               ps.total_experience AS score
        FROM progression_state ps
        LEFT JOIN family_profiles fp
            ON fp.user_id = ps.user_id
           AND fp.family_member_id IS NOT DISTINCT FROM ps.family_member_id
        ORDER BY ps.created_at ASC
    `

	listPointsScoresQuery = `
        SELECT COALESCE(ps.family_member_id::text, ps.user_id::text) AS participant_id,
               COALESCE(fp.display_name, '우리 가족') AS display_name,
               ps.points AS score
        FROM progression_state ps
        LEFT JOIN family_profiles fp
            ON fp.user_id = ps.user_id
           AND fp.family_member_id IS NOT DISTINCT FROM ps.family_member_id
        ORDER BY ps.created_at ASC
    `
)

// pgProgressionRepository реализует ProgressionRepository поверх PostgreSQL.
type pgProgressionRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.ProgressionRepository = (*pgProgressionRepository)(nil)

// NewPgProgressionRepository создает репозиторий прогрессии.
func NewPgProgressionRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ProgressionRepository {
	return &pgProgressionRepository{
		db:     db,
		logger: logger.Named("PgProgressionRepo"),
	}
}

// Get возвращает состояние прогрессии области или ErrStateNotFound.
func (r *pgProgressionRepository) Get(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) (*models.ProgressionState, error) {
	var state models.ProgressionState
	var badges pq.StringArray

	row := r.db.QueryRow(ctx, getProgressionQuery, userID, familyMemberID)
	err := row.Scan(&state.UserID, &state.FamilyMemberID, &state.TotalExperience, &state.Points, &badges, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStateNotFound
		}
		r.logger.Error("Failed to get progression state", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get progression state: %w", err)
	}

	state.Badges = []string(badges)
	return &state, nil
}

// Upsert записывает состояние целиком (last-write-wins).
func (r *pgProgressionRepository) Upsert(ctx context.Context, state *models.ProgressionState) error {
	_, err := r.db.Exec(ctx, upsertProgressionQuery,
		state.UserID, state.FamilyMemberID, state.TotalExperience, state.Points,
		pq.StringArray(state.Badges), state.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert progression state",
			zap.String("userID", state.UserID.String()), zap.Error(err))
		return fmt.Errorf("failed to upsert progression state: %w", err)
	}
	return nil
}

// ListScores возвращает неранжированный снимок счетов всех участников.
func (r *pgProgressionRepository) ListScores(ctx context.Context, by models.LeaderboardType) ([]models.LeaderboardEntry, error) {
	query := listExperienceScoresQuery
	if by == models.LeaderboardPoints {
		query = listPointsScoresQuery
	}

	var entries []models.LeaderboardEntry
	if err := pgxscan.Select(ctx, r.db, &entries, query); err != nil {
		r.logger.Error("Failed to list leaderboard scores", zap.String("type", string(by)), zap.Error(err))
		return nil, fmt.Errorf("failed to list leaderboard scores: %w", err)
	}
	return entries, nil
}

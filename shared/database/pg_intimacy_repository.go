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
	"go.uber.org/zap"
)

const (
	getIntimacyQuery = `
        SELECT user_id, family_member_id, intimacy_score, intimacy_level, last_interaction_at, updated_at
        FROM intimacy_state
        WHERE user_id = $1 AND family_member_id = $2
    `

	upsertIntimacyQuery = `
        INSERT INTO intimacy_state (user_id, family_member_id, intimacy_score, intimacy_level, last_interaction_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id, family_member_id) DO UPDATE SET
            intimacy_score = EXCLUDED.intimacy_score,
            intimacy_level = EXCLUDED.intimacy_level,
            last_interaction_at = EXCLUDED.last_interaction_at,
            updated_at = EXCLUDED.updated_at
    `
)

// pgIntimacyRepository реализует IntimacyRepository поверх PostgreSQL.
type pgIntimacyRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.IntimacyRepository = (*pgIntimacyRepository)(nil)

// NewPgIntimacyRepository создает репозиторий близости.
func NewPgIntimacyRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.IntimacyRepository {
	return &pgIntimacyRepository{
		db:     db,
		logger: logger.Named("PgIntimacyRepo"),
	}
}

// Get возвращает состояние близости пары или ErrStateNotFound.
func (r *pgIntimacyRepository) Get(ctx context.Context, userID uuid.UUID, familyMemberID uuid.UUID) (*models.IntimacyState, error) {
	var state models.IntimacyState
	err := pgxscan.Get(ctx, r.db, &state, getIntimacyQuery, userID, familyMemberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStateNotFound
		}
		r.logger.Error("Failed to get intimacy state", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get intimacy state: %w", err)
	}
	return &state, nil
}

// Upsert записывает состояние целиком (last-write-wins).
func (r *pgIntimacyRepository) Upsert(ctx context.Context, state *models.IntimacyState) error {
	_, err := r.db.Exec(ctx, upsertIntimacyQuery,
		state.UserID, state.FamilyMemberID, state.IntimacyScore, state.IntimacyLevel,
		state.LastInteractionAt, state.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert intimacy state",
			zap.String("userID", state.UserID.String()), zap.Error(err))
		return fmt.Errorf("failed to upsert intimacy state: %w", err)
	}
	return nil
}

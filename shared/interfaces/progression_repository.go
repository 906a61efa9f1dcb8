package interfaces

import (
	"context"

	"character-game-server/shared/models"

	"github.com/google/uuid"
)

// ProgressionRepository stores per-scope experience/points/badges.
type ProgressionRepository interface {
	// Get returns the state for (user, family member or self), or
	// models.ErrStateNotFound when no row exists yet.
	Get(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) (*models.ProgressionState, error)

	// Upsert writes the full state (last-write-wins accumulation).
	Upsert(ctx context.Context, state *models.ProgressionState) error

	// ListScores returns one entry per participant for the leaderboard,
	// unranked, in first-seen (created_at) order so repeated calls over the
	// same data stay deterministic.
	ListScores(ctx context.Context, by models.LeaderboardType) ([]models.LeaderboardEntry, error)
}

// IntimacyRepository stores the closeness score per (user, family member).
type IntimacyRepository interface {
	// Get returns the pair's state, or models.ErrStateNotFound.
	Get(ctx context.Context, userID uuid.UUID, familyMemberID uuid.UUID) (*models.IntimacyState, error)

	// Upsert writes the full state.
	Upsert(ctx context.Context, state *models.IntimacyState) error
}

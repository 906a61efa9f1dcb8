package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressionState is the per-(user, family-member-or-self) accumulation of
// experience, points and badges. TotalExperience is the source of truth:
// level and in-level progress are always derived from it, never stored.
type ProgressionState struct {
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	FamilyMemberID  *uuid.UUID `json:"family_member_id,omitempty" db:"family_member_id"` // nil = the user's own character
	TotalExperience int        `json:"total_experience" db:"total_experience"`           // Monotonically non-decreasing
	Points          int        `json:"points" db:"points"`                               // Spendable/display counter, independent scale
	Badges          []string   `json:"badges" db:"badges"`                               // Append-only set of badge identifiers
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// HasBadge reports whether the badge is already present.
func (s *ProgressionState) HasBadge(badge string) bool {
	for _, b := range s.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// CompletionResult is returned by the completion pipeline after a successful
// active→completed transition.
type CompletionResult struct {
	Event             *GameEvent `json:"event"`
	PointsEarned      int        `json:"points_earned"`
	ExperienceEarned  int        `json:"experience_earned"`
	LeveledUp         bool       `json:"leveled_up"`
	NewLevel          int        `json:"new_level,omitempty"`
	LevelUpBonus      int        `json:"level_up_bonus,omitempty"`
	UnlockedBadges    []string   `json:"unlocked_badges,omitempty"`
	RewardApplyFailed bool       `json:"reward_apply_failed,omitempty"` // Completion committed, scoring must be retried separately
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// InteractionType is the trigger kind for closeness updates between a user
// and a family member. Disjoint from game event completion on purpose.
type InteractionType string

const (
	InteractionHealthHelp             InteractionType = "health_help"
	InteractionChallengeParticipation InteractionType = "challenge_participation"
	InteractionDailyInteraction       InteractionType = "daily_interaction"
)

// IsValid reports whether the interaction type is known.
func (t InteractionType) IsValid() bool {
	switch t {
	case InteractionHealthHelp, InteractionChallengeParticipation, InteractionDailyInteraction:
		return true
	}
	return false
}

// IntimacyState is the stored closeness score for a (user, family member) pair.
// The score is clamped to a fixed range and never negative.
type IntimacyState struct {
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	FamilyMemberID    uuid.UUID  `json:"family_member_id" db:"family_member_id"`
	IntimacyScore     int        `json:"intimacy_score" db:"intimacy_score"`
	IntimacyLevel     int        `json:"intimacy_level" db:"intimacy_level"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty" db:"last_interaction_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// IntimacyUpdate is the result of applying a single interaction.
type IntimacyUpdate struct {
	IntimacyScore     int       `json:"intimacy_score"`
	IntimacyLevel     int       `json:"intimacy_level"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

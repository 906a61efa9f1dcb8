package models

// LeaderboardType selects which score feeds the ranking.
type LeaderboardType string

const (
	LeaderboardExperience LeaderboardType = "experience"
	LeaderboardPoints     LeaderboardType = "points"
)

// IsValid reports whether the leaderboard type is known.
func (t LeaderboardType) IsValid() bool {
	return t == LeaderboardExperience || t == LeaderboardPoints
}

// LeaderboardEntry is a computed, ephemeral ranking row. Not persisted.
type LeaderboardEntry struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Score         int    `json:"score"`
	Rank          int    `json:"rank"`
}

// LeaderboardView is the response shape of the leaderboard operation.
// CurrentUser carries the caller's true rank even when they fall outside
// the visible top-N window.
type LeaderboardView struct {
	Type        LeaderboardType    `json:"type"`
	Entries     []LeaderboardEntry `json:"entries"`
	CurrentUser *LeaderboardEntry  `json:"current_user,omitempty"`
}

package service

import "errors"

var (
	ErrUnknownInteractionType = errors.New("unknown interaction type")
	ErrUnknownLeaderboardType = errors.New("unknown leaderboard type")
	// Можно добавить другие специфичные ошибки
)

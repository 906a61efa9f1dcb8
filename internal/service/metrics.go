package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	completionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_event_completions_total",
			Help: "Total number of successful event completions by event type.",
		},
		[]string{"event_type"},
	)

	levelUpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_level_ups_total",
		Help: "Total number of character level ups.",
	})

	expirationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_event_expirations_total",
		Help: "Total number of events expired on read.",
	})

	rewardApplyFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_reward_apply_failures_total",
		Help: "Total number of reward applications that failed after a committed completion.",
	})
)

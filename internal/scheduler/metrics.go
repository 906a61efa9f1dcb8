package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	candidatesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_scheduler_candidates_generated_total",
			Help: "Total number of candidates materialized as pending events, by adapter.",
		},
		[]string{"adapter"},
	)

	candidatesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_scheduler_candidates_skipped_total",
			Help: "Total number of candidates skipped as duplicates of unresolved events, by adapter.",
		},
		[]string{"adapter"},
	)

	candidatesFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_scheduler_candidates_failed_total",
			Help: "Total number of candidates rejected by validation or storage, by adapter.",
		},
		[]string{"adapter"},
	)

	adapterFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_scheduler_adapter_failures_total",
			Help: "Total number of adapter runs that failed entirely, by adapter.",
		},
		[]string{"adapter"},
	)
)

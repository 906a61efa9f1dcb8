package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var tokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "game_token_verifications_total",
		Help: "Количество проверок токенов доступа по результату.",
	},
	[]string{"result"},
)

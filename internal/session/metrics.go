package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chargesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonmaster_charges_total",
			Help: "Charge attempts by outcome",
		},
		[]string{"outcome"},
	)

	rewardMoney = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tonmaster_reward_money_total",
			Help: "In-game currency paid out for approved charges",
		},
	)
)

package scenario

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sourceRemote   = "remote"
	sourceFallback = "fallback"
)

var fetchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tonmaster_scenario_fetch_total",
		Help: "Scenarios handed out, by source and fallback reason",
	},
	[]string{"source", "reason"},
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdateChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omaha_update_checks_total",
		Help: "Update check outcomes by status (ok, noupdate, throttled, error).",
	}, []string{"status"})

	StatsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "omaha_stats_recorded_total",
		Help: "Client reports persisted by the statistics collector.",
	})

	StatsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "omaha_stats_dropped_total",
		Help: "Client reports dropped because the statistics queue was full.",
	})

	EventErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "omaha_event_errors_total",
		Help: "Client events reporting an install or update failure.",
	})
)

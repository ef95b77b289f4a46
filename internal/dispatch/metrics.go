package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "breadbot",
	Subsystem: "dispatch",
	Name:      "commands_total",
	Help:      "Total commands dispatched, by verb.",
}, []string{"verb"})

var commandFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "breadbot",
	Subsystem: "dispatch",
	Name:      "command_failures_total",
	Help:      "Total commands that resolved to a failure reply, by reason.",
}, []string{"reason"})

var ignoredCommands = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "breadbot",
	Subsystem: "dispatch",
	Name:      "ignored_commands_total",
	Help:      "Total inbound messages whose first token matched no verb.",
})

var commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "breadbot",
	Subsystem: "dispatch",
	Name:      "command_duration_seconds",
	Help:      "Wall time spent handling a command, by verb.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
}, []string{"verb"})

var storageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "breadbot",
	Subsystem: "storage",
	Name:      "errors_total",
	Help:      "Total ledger load/save failures, by operation.",
}, []string{"op"})

var accountsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "breadbot",
	Subsystem: "ledger",
	Name:      "accounts",
	Help:      "Number of accounts in the last committed ledger.",
})

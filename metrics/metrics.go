// Package metrics exposes the engine's Prometheus instrumentation: one
// counter per façade command outcome, a histogram of the time spent
// materializing a round's matches (labelled by match system), and a
// counter of match-ready events the notify hub dropped.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facade_commands_total",
		Help: "Façade commands processed, by command name and outcome.",
	}, []string{"command", "outcome"})

	GenerationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "match_generation_seconds",
		Help:    "Time spent materializing a round's matches, by generator kind.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	NotifyDrops = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_drops_total",
		Help: "Match-ready events dropped because a client's send buffer was full.",
	}, []string{"room"})
)

func init() {
	prometheus.MustRegister(CommandsTotal, GenerationSeconds, NotifyDrops)
}

// Handler returns the Prometheus scrape endpoint; config.MetricsAddr
// being empty means the caller never mounts it.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCommand records one façade command's terminal outcome.
func ObserveCommand(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CommandsTotal.WithLabelValues(command, outcome).Inc()
}

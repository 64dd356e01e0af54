package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// collector implements prometheus.Collector, reading Stats on each scrape.
type collector struct {
	stats *Stats

	commandsTotal           *prometheus.Desc
	unknownCommandsTotal    *prometheus.Desc
	completionRequestsTotal *prometheus.Desc
	completionFailuresTotal *prometheus.Desc
}

// NewCollector returns a prometheus.Collector exporting stats.
func NewCollector(stats *Stats) prometheus.Collector {
	return &collector{
		stats: stats,

		commandsTotal: prometheus.NewDesc(
			"shellac_commands_total",
			"Total commands dispatched.",
			[]string{"command"}, nil,
		),
		unknownCommandsTotal: prometheus.NewDesc(
			"shellac_unknown_commands_total",
			"Total lines that named no command.",
			nil, nil,
		),
		completionRequestsTotal: prometheus.NewDesc(
			"shellac_completion_requests_total",
			"Total tab-completion requests.",
			nil, nil,
		),
		completionFailuresTotal: prometheus.NewDesc(
			"shellac_completion_failures_total",
			"Total completion requests that failed.",
			nil, nil,
		),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.commandsTotal
	ch <- c.unknownCommandsTotal
	ch <- c.completionRequestsTotal
	ch <- c.completionFailuresTotal
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()
	for cmd, n := range snap.Dispatched {
		ch <- prometheus.MustNewConstMetric(c.commandsTotal, prometheus.CounterValue,
			float64(n), cmd)
	}
	ch <- prometheus.MustNewConstMetric(c.unknownCommandsTotal, prometheus.CounterValue,
		float64(snap.Unknown))
	ch <- prometheus.MustNewConstMetric(c.completionRequestsTotal, prometheus.CounterValue,
		float64(snap.CompletionRequests))
	ch <- prometheus.MustNewConstMetric(c.completionFailuresTotal, prometheus.CounterValue,
		float64(snap.CompletionFailures))
}

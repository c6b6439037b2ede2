// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records API usage and run outcomes as Prometheus
// counters. The CLI is short-lived, so the registry is written to a
// node_exporter textfile instead of being served.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of one process. Each instance has its own
// registry so tests do not share state.
type Metrics struct {
	Registry *prometheus.Registry

	APIRequests    *prometheus.CounterVec
	QuotaUnits     prometheus.Counter
	RecordsMatched prometheus.Counter
	RecordsSkipped prometheus.Counter
	Runs           *prometheus.CounterVec
}

// New creates and registers the counters.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		APIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channel_scout_api_requests_total",
				Help: "YouTube Data API calls, labeled by endpoint and HTTP status.",
			},
			[]string{"endpoint", "status"},
		),
		QuotaUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "channel_scout_quota_units_total",
			Help: "YouTube Data API quota units spent.",
		}),
		RecordsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "channel_scout_records_matched_total",
			Help: "Records that passed the filter.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "channel_scout_records_skipped_total",
			Help: "Detail entries dropped because they could not be normalized.",
		}),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channel_scout_runs_total",
				Help: "Discovery runs, labeled by stop reason.",
			},
			[]string{"stop"},
		),
	}
	m.Registry.MustRegister(m.APIRequests, m.QuotaUnits, m.RecordsMatched, m.RecordsSkipped, m.Runs)
	return m
}

// ObserveRequest counts one API call. A status of 0 means no response.
func (m *Metrics) ObserveRequest(endpoint string, status int, quota int) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.QuotaUnits.Add(float64(quota))
}

// ObserveRun counts a finished run.
func (m *Metrics) ObserveRun(stop string, matched, skipped int) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(stop).Inc()
	m.RecordsMatched.Add(float64(matched))
	m.RecordsSkipped.Add(float64(skipped))
}

// WriteTextfile writes the registry in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

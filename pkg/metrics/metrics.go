// Package metrics defines the Prometheus metric collectors for the scout
// pipeline and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the scout service.
type Metrics struct {
	RunsTotal              *prometheus.CounterVec
	RunDuration            prometheus.Histogram
	CampaignsProcessed     prometheus.Counter
	CampaignsFailed        prometheus.Counter
	CandidatesFound        prometheus.Counter
	CandidatesDropped      *prometheus.CounterVec
	CandidatesPublished    prometheus.Counter
	DeadLetterTotal        prometheus.Counter
	SeenCacheHits          prometheus.Counter
	SeenCacheFailOpenTotal prometheus.Counter
	CircuitBreakerState    *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_runs_total",
				Help: "Total scout runs by outcome (completed, skipped, failed).",
			},
			[]string{"outcome"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scout_run_duration_seconds",
				Help:    "Duration of a full scout run in seconds.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		CampaignsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scout_campaigns_processed_total",
				Help: "Campaigns processed to completion across all runs.",
			},
		),
		CampaignsFailed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scout_campaigns_failed_total",
				Help: "Campaigns that failed mid-pipeline across all runs.",
			},
		),
		CandidatesFound: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scout_candidates_found_total",
				Help: "Raw candidates returned by discovery search.",
			},
		),
		CandidatesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_candidates_dropped_total",
				Help: "Candidates dropped by stage (stale, below_threshold, lookup_failed, seen).",
			},
			[]string{"reason"},
		),
		CandidatesPublished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scout_candidates_published_total",
				Help: "Candidates published to the new-tweets topic.",
			},
		),
		DeadLetterTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scout_dead_letter_records_total",
				Help: "Dead-letter records produced for failed publish batches.",
			},
		),
		SeenCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scout_seen_cache_hits_total",
				Help: "Candidates filtered out as already seen.",
			},
		),
		SeenCacheFailOpenTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scout_seen_cache_fail_open_total",
				Help: "Seen-cache reads that failed open (store unavailable).",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.CampaignsProcessed,
		m.CampaignsFailed,
		m.CandidatesFound,
		m.CandidatesDropped,
		m.CandidatesPublished,
		m.DeadLetterTotal,
		m.SeenCacheHits,
		m.SeenCacheFailOpenTotal,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

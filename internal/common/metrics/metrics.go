// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_questions_resolved_total",
			Help: "Total questions resolved, by selected strategy",
		},
		[]string{"strategy"},
	)

	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "advisor_resolution_duration_seconds",
			Help: "End-to-end question resolution duration in seconds",
		},
		[]string{"strategy"},
	)

	SourceQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_source_queries_total",
			Help: "Knowledge source queries, by source and outcome",
		},
		[]string{"source", "status"},
	)

	PerfLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_perf_lookups_total",
			Help: "Performance table lookups, by match depth (exact, as_hatched, nearest_age, miss)",
		},
		[]string{"result"},
	)

	PerfCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_perf_cache_total",
			Help: "Performance dataset cache lookups, by outcome",
		},
		[]string{"outcome"},
	)

	ClarificationRounds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_clarification_rounds_total",
			Help: "Total clarification rounds issued",
		},
	)

	SynthesisFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_synthesis_fallbacks_total",
			Help: "Times the rule-based synthesizer answered after a primary failure",
		},
	)
)

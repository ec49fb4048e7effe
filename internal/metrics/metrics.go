package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	SourceCatalog = "catalog"
	SourceGrades  = "grades"
	SourceRatings = "ratings"
	SourceAI      = "ai"

	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zotprof_upstream_requests_total",
			Help: "Outbound calls to third-party data sources by outcome",
		},
		[]string{"source", "outcome"},
	)

	AIFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zotprof_ai_fallbacks_total",
			Help: "Narratives replaced by the templated fallback text",
		},
		[]string{"kind"},
	)

	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zotprof_chat_turns_total",
			Help: "Conversation turns processed, by the stage the turn started in",
		},
		[]string{"stage"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zotprof_search_duration_seconds",
			Help:    "End-to-end search latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	DegradedSections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zotprof_degraded_sections_total",
			Help: "Sections emitted as TBA after their enrichment failed",
		},
	)
)

// Observe records the outcome of one upstream call.
func Observe(source string, err error, found bool) {
	switch {
	case err != nil:
		UpstreamRequests.WithLabelValues(source, OutcomeError).Inc()
	case !found:
		UpstreamRequests.WithLabelValues(source, OutcomeNotFound).Inc()
	default:
		UpstreamRequests.WithLabelValues(source, OutcomeOK).Inc()
	}
}

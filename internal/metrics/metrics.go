package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ChecksTotal counts moderation decisions by resolved action.
	ChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_checks_total",
		Help: "Number of moderation checks by resolved action.",
	}, []string{"action"})

	// ClassifierFallbacks counts toxicity checks that fell back to the
	// heuristic scorer because the external classifier was unavailable.
	ClassifierFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_classifier_fallback_total",
		Help: "Number of toxicity checks served by the heuristic fallback.",
	})

	// ClassifierDuration tracks external classifier call latency.
	ClassifierDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "moderation_classifier_duration_seconds",
		Help:    "Latency of external toxicity classifier calls.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler returns the HTTP handler serving the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

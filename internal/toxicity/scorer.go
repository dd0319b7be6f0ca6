// Package toxicity scores content for harmfulness. The primary path delegates
// to an external text classifier; a heuristic fallback covers classifier
// outages so scoring itself never fails.
package toxicity

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/quckapp/moderation-service/internal/metrics"
)

// LabelScore is one classification label with its confidence.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier is an external text classifier, typically a network call to a
// model-serving endpoint.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]LabelScore, error)
}

// Result is the outcome of one toxicity analysis.
type Result struct {
	Score   float64            `json:"score"`
	IsToxic bool               `json:"is_toxic"`
	Labels  map[string]float64 `json:"labels"`
}

// Labels that count as the positive (toxic) class. LABEL_1 covers generic
// binary classifiers that do not name their classes.
var toxicLabels = []string{"hate", "toxic", "offensive", "LABEL_1"}

// maxInputRunes bounds classifier cost; longer content is truncated.
const maxInputRunes = 512

// Scorer analyzes content with the configured classifier, degrading to the
// heuristic fallback when the classifier is missing, failing, or tripped.
type Scorer struct {
	classifier Classifier
	threshold  float64
	breaker    *gobreaker.CircuitBreaker
	log        *logrus.Logger
}

// NewScorer builds a Scorer. classifier may be nil, in which case every call
// uses the fallback heuristics.
func NewScorer(classifier Classifier, threshold float64, log *logrus.Logger) *Scorer {
	settings := gobreaker.Settings{
		Name:        "toxicity-classifier",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Classifier circuit breaker state change")
		},
	}

	return &Scorer{
		classifier: classifier,
		threshold:  threshold,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		log:        log,
	}
}

// Analyze scores text for toxicity. It never returns an error: any failure of
// the primary classifier is absorbed by the fallback heuristics.
func (s *Scorer) Analyze(ctx context.Context, text string) Result {
	text = Truncate(text, maxInputRunes)

	if s.classifier == nil {
		return fallbackAnalyze(text, s.threshold)
	}

	start := time.Now()
	out, err := s.breaker.Execute(func() (any, error) {
		return s.classifier.Classify(ctx, text)
	})
	metrics.ClassifierDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.log.WithError(err).Warn("Toxicity classifier failed, using fallback")
		metrics.ClassifierFallbacks.Inc()
		return fallbackAnalyze(text, s.threshold)
	}

	scores, ok := out.([]LabelScore)
	if !ok || len(scores) == 0 {
		return Result{Labels: map[string]float64{}}
	}

	labels := make(map[string]float64, len(scores))
	for _, ls := range scores {
		labels[ls.Label] = ls.Score
	}

	var maxToxic float64
	for _, label := range toxicLabels {
		if v := labels[label]; v > maxToxic {
			maxToxic = v
		}
	}

	return Result{
		Score:   maxToxic,
		IsToxic: maxToxic >= s.threshold,
		Labels:  labels,
	}
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

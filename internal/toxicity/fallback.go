package toxicity

import "regexp"

// Heuristic patterns used when no classifier is reachable. Each match adds a
// fixed increment to the score, capped at 1.0.
var fallbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(kill|die|hate|stupid|idiot)\b`),
	regexp.MustCompile(`!{3,}`),
}

const fallbackIncrement = 0.2

func fallbackAnalyze(text string, threshold float64) Result {
	score := 0.0
	for _, p := range fallbackPatterns {
		if p.MatchString(text) {
			score += fallbackIncrement
		}
	}
	if score > 1.0 {
		score = 1.0
	}

	return Result{
		Score:   score,
		IsToxic: score >= threshold,
		Labels:  map[string]float64{"fallback": score},
	}
}

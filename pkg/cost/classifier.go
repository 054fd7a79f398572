// Package cost routes questions by complexity and compresses schema
// context to keep synthesis prompts small.
package cost

import (
	"strings"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// Keyword sets for the complexity tiers. A question is scanned case-
// insensitively for substring matches.
var (
	simpleIndicators = []string{
		"count", "total", "sum", "how many", "show me", "list all",
	}
	complexIndicators = []string{
		"compare", "analyze", "trend", "correlation", "predict",
		"percentage", "ratio", "join", "group by", "having", "percentile",
	}
	advancedIndicators = []string{
		"cohort", "retention", "forecasting", "forecast", "anomaly",
		"regression", "seasonality", "attribution",
	}
)

// Classify buckets a question into a complexity tier. The tier only
// steers synthesis depth and cost, never correctness.
func Classify(question string) models.ComplexityTier {
	lower := strings.ToLower(question)
	words := strings.Fields(lower)

	for _, kw := range advancedIndicators {
		if strings.Contains(lower, kw) {
			return models.ComplexityAdvanced
		}
	}

	complexScore := 0
	for _, kw := range complexIndicators {
		if strings.Contains(lower, kw) {
			complexScore++
		}
	}

	conjunctions := 0
	for _, w := range words {
		if w == "and" || w == "or" {
			conjunctions++
		}
	}

	if complexScore > 0 || conjunctions > 1 || len(words) > 20 {
		return models.ComplexityComplex
	}

	simpleScore := 0
	for _, kw := range simpleIndicators {
		if strings.Contains(lower, kw) {
			simpleScore++
		}
	}
	if simpleScore > 0 && len(words) < 10 {
		return models.ComplexitySimple
	}

	return models.ComplexityMedium
}

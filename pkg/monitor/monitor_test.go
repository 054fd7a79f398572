package monitor

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

func TestRecorder_TruncatesQuestion(t *testing.T) {
	r := NewRecorder()
	r.Record(QueryMetrics{Question: strings.Repeat("x", 500), Success: true})

	metrics := r.SystemMetrics(24)
	assert.Equal(t, 1, metrics.TotalQueries)
	assert.Equal(t, 1, r.Len())
	assert.Len(t, r.history[0].Question, questionPrefixLen)
}

func TestRecorder_TruncatesOnRuneBoundary(t *testing.T) {
	r := NewRecorder()
	// 99 ASCII bytes followed by multi-byte runes puts a rune
	// straddling the truncation offset.
	r.Record(QueryMetrics{Question: strings.Repeat("x", 99) + strings.Repeat("é", 10)})

	got := r.history[0].Question
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("x", 99), got)
}

func TestRecorder_BoundsHistory(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < historyLimit+50; i++ {
		r.Record(QueryMetrics{Question: "q", Success: true})
	}
	assert.Equal(t, historyLimit, r.Len())
}

func TestSystemMetrics_Aggregates(t *testing.T) {
	r := NewRecorder()
	r.Record(QueryMetrics{
		Question:            "total sales",
		Complexity:          models.ComplexitySimple,
		ProcessingTime:      2.0,
		TokensUsed:          300,
		CacheHit:            true,
		OptimizationApplied: true,
		CostEstimated:       0.0045,
		Success:             true,
	})
	r.Record(QueryMetrics{
		Question:       "broken question",
		Complexity:     models.ComplexityMedium,
		ProcessingTime: 4.0,
		Success:        false,
		ErrorMessage:   "relation does not exist",
	})

	m := r.SystemMetrics(24)
	assert.Equal(t, 2, m.TotalQueries)
	assert.Equal(t, 1, m.SuccessfulQueries)
	assert.InDelta(t, 50.0, m.CacheHitRate, 0.001)
	assert.InDelta(t, 50.0, m.ErrorRate, 0.001)
	assert.InDelta(t, 3.0, m.AvgProcessingTime, 0.001)
	assert.Equal(t, 300, m.TotalTokensSaved)
	assert.InDelta(t, 0.0045, m.TotalCostSaved, 1e-9)
}

func TestSystemMetrics_EmptyWindow(t *testing.T) {
	r := NewRecorder()
	assert.Equal(t, SystemMetrics{}, r.SystemMetrics(24))
}

func TestSystemMetrics_ExcludesOldEntries(t *testing.T) {
	r := NewRecorder()
	r.Record(QueryMetrics{
		Timestamp: time.Now().Add(-48 * time.Hour),
		Question:  "stale",
		Success:   true,
	})
	r.Record(QueryMetrics{Question: "fresh", Success: true})

	assert.Equal(t, 1, r.SystemMetrics(24).TotalQueries)
}

func TestPerformanceReport_Formats(t *testing.T) {
	r := NewRecorder()
	r.Record(QueryMetrics{
		Question:            "total sales",
		ProcessingTime:      1.5,
		TokensUsed:          200,
		CacheHit:            true,
		OptimizationApplied: true,
		CostEstimated:       0.003,
		Success:             true,
	})

	report := r.PerformanceReport()
	assert.Equal(t, "100.0%", report.OptimizationImpact.CacheHitRate)
	assert.Equal(t, 200, report.OptimizationImpact.TokensSaved24h)
	assert.Equal(t, "$0.0030", report.OptimizationImpact.CostSaved24h)
	assert.Equal(t, "1.50s", report.OptimizationImpact.AvgResponseTime)
	assert.NotEmpty(t, report.ReportTimestamp)
}

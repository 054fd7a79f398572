// Package monitor tracks per-query cost and performance metrics with a
// bounded in-memory history.
package monitor

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

const (
	// historyLimit bounds the retained query history.
	historyLimit = 1000
	// questionPrefixLen truncates recorded questions for privacy.
	questionPrefixLen = 100
)

// QueryMetrics captures one answered (or failed) question.
type QueryMetrics struct {
	Timestamp           time.Time             `json:"timestamp"`
	Question            string                `json:"question"`
	Complexity          models.ComplexityTier `json:"complexity"`
	ProcessingTime      float64               `json:"processing_time"`
	TokensUsed          int                   `json:"tokens_used"`
	CacheHit            bool                  `json:"cache_hit"`
	OptimizationApplied bool                  `json:"optimization_applied"`
	CostEstimated       float64               `json:"cost_estimated"`
	Success             bool                  `json:"success"`
	ErrorMessage        string                `json:"error_message,omitempty"`
}

// SystemMetrics aggregates the history over a window.
type SystemMetrics struct {
	TotalQueries      int     `json:"total_queries"`
	SuccessfulQueries int     `json:"successful_queries"`
	CacheHitRate      float64 `json:"cache_hit_rate"`
	AvgProcessingTime float64 `json:"avg_processing_time"`
	TotalTokensSaved  int     `json:"total_tokens_saved"`
	TotalCostSaved    float64 `json:"total_cost_saved"`
	UptimeHours       float64 `json:"uptime_hours"`
	ErrorRate         float64 `json:"error_rate"`
}

// Report is the operator-facing performance summary.
type Report struct {
	ReportTimestamp    string             `json:"report_timestamp"`
	SystemUptimeHours  float64            `json:"system_uptime_hours"`
	Last24Hours        SystemMetrics      `json:"last_24_hours"`
	OptimizationImpact OptimizationImpact `json:"optimization_impact"`
}

// OptimizationImpact is the pre-formatted headline block of a Report.
type OptimizationImpact struct {
	CacheHitRate    string `json:"cache_hit_rate"`
	TokensSaved24h  int    `json:"tokens_saved_24h"`
	CostSaved24h    string `json:"cost_saved_24h"`
	AvgResponseTime string `json:"avg_response_time"`
}

// Recorder accumulates query metrics. Safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	history   []QueryMetrics
	startTime time.Time
	now       func() time.Time
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Record appends one query's metrics, truncating the question and
// dropping the oldest entries beyond the history limit.
func (r *Recorder) Record(m QueryMetrics) {
	if m.Timestamp.IsZero() {
		m.Timestamp = r.now()
	}
	if len(m.Question) > questionPrefixLen {
		cut := questionPrefixLen
		// Back up to a rune boundary so a multi-byte character is
		// never split.
		for cut > 0 && !utf8.RuneStart(m.Question[cut]) {
			cut--
		}
		m.Question = m.Question[:cut]
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, m)
	if len(r.history) > historyLimit {
		r.history = r.history[len(r.history)-historyLimit:]
	}
}

// Len returns the number of retained entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// SystemMetrics aggregates entries recorded within the last hoursBack
// hours. An empty window yields the zero value.
func (r *Recorder) SystemMetrics(hoursBack int) SystemMetrics {
	cutoff := r.now().Add(-time.Duration(hoursBack) * time.Hour)

	r.mu.Lock()
	var recent []QueryMetrics
	for _, q := range r.history {
		if !q.Timestamp.Before(cutoff) {
			recent = append(recent, q)
		}
	}
	r.mu.Unlock()

	if len(recent) == 0 {
		return SystemMetrics{}
	}

	total := len(recent)
	var successful, cacheHits, tokensSaved int
	var totalTime, costSaved float64
	for _, q := range recent {
		if q.Success {
			successful++
		}
		if q.CacheHit {
			cacheHits++
		}
		totalTime += q.ProcessingTime
		if q.OptimizationApplied {
			tokensSaved += q.TokensUsed
			costSaved += q.CostEstimated
		}
	}

	return SystemMetrics{
		TotalQueries:      total,
		SuccessfulQueries: successful,
		CacheHitRate:      float64(cacheHits) / float64(total) * 100,
		AvgProcessingTime: totalTime / float64(total),
		TotalTokensSaved:  tokensSaved,
		TotalCostSaved:    costSaved,
		UptimeHours:       r.now().Sub(r.startTime).Hours(),
		ErrorRate:         float64(total-successful) / float64(total) * 100,
	}
}

// PerformanceReport summarizes the last 24 hours.
func (r *Recorder) PerformanceReport() Report {
	last24h := r.SystemMetrics(24)
	return Report{
		ReportTimestamp:   r.now().Format(time.RFC3339),
		SystemUptimeHours: last24h.UptimeHours,
		Last24Hours:       last24h,
		OptimizationImpact: OptimizationImpact{
			CacheHitRate:    formatPercent(last24h.CacheHitRate),
			TokensSaved24h:  last24h.TotalTokensSaved,
			CostSaved24h:    formatDollars(last24h.TotalCostSaved),
			AvgResponseTime: formatSeconds(last24h.AvgProcessingTime),
		},
	}
}

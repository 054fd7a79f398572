package models

import (
	"time"

	"github.com/google/uuid"
)

// ComplexityTier buckets a question by how demanding its SQL is
// expected to be. The tier drives prompt depth and token budgets.
type ComplexityTier string

const (
	ComplexitySimple   ComplexityTier = "simple"
	ComplexityMedium   ComplexityTier = "medium"
	ComplexityComplex  ComplexityTier = "complex"
	ComplexityAdvanced ComplexityTier = "advanced"
)

// StepStatus is the outcome of one workflow step.
type StepStatus string

const (
	StepSuccess StepStatus = "success"
	StepError   StepStatus = "error"
	StepSkipped StepStatus = "skipped"
)

// Workflow step names, in the order they can occur.
const (
	StepSchemaContext      = "schema_context"
	StepSQLGeneration      = "sql_generation"
	StepSecurityValidation = "security_validation"
	StepSQLExecution       = "sql_execution"
	StepSQLFixAttempt      = "sql_fix_attempt"
	StepSQLExecutionRetry  = "sql_execution_retry"
	StepAnalysis           = "analysis"
)

// StepLog records one step of a workflow run for transparency.
type StepLog struct {
	Step     string        `json:"step"`
	Status   StepStatus    `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns,omitempty"`
}

// WorkflowResult is the full outcome of a question-to-answer run.
type WorkflowResult struct {
	WorkflowID  string           `json:"workflow_id"`
	Status      StepStatus       `json:"status"`
	Message     string           `json:"message,omitempty"`
	Question    string           `json:"question"`
	SQL         string           `json:"sql_query,omitempty"`
	Complexity  ComplexityTier   `json:"complexity,omitempty"`
	Rows        []map[string]any `json:"results,omitempty"`
	RowCount    int              `json:"result_count"`
	Analysis    string           `json:"analysis,omitempty"`
	FromCache   bool             `json:"from_cache"`
	Repaired    bool             `json:"repaired"`
	Steps       []StepLog        `json:"workflow_log"`
	DurationSec float64          `json:"workflow_duration_seconds"`
}

// NewWorkflowResult starts a failed-until-proven-otherwise result with
// a fresh workflow ID.
func NewWorkflowResult(question string) *WorkflowResult {
	return &WorkflowResult{
		WorkflowID: uuid.NewString(),
		Question:   question,
		Status:     StepError,
	}
}

// Succeeded reports whether the workflow produced a usable answer.
func (r *WorkflowResult) Succeeded() bool {
	return r.Status == StepSuccess
}

// AddStep appends a step record to the workflow log.
func (r *WorkflowResult) AddStep(step string, status StepStatus, message string, d time.Duration) {
	r.Steps = append(r.Steps, StepLog{Step: step, Status: status, Message: message, Duration: d})
}

// QueryMetadata describes a generated query for routing and display.
type QueryMetadata struct {
	QueryType           string   `json:"query_type"`
	TablesReferenced    []string `json:"tables_referenced"`
	HasJoins            bool     `json:"has_joins"`
	HasAggregations     bool     `json:"has_aggregations"`
	HasFiltering        bool     `json:"has_filtering"`
	HasGrouping         bool     `json:"has_grouping"`
	HasOrdering         bool     `json:"has_ordering"`
	EstimatedComplexity string   `json:"estimated_complexity"`
}

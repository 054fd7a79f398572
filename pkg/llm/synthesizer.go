// Package llm provides the SQL synthesis collaborators: provider
// clients, error classification, and the circuit breaker that guards
// them.
package llm

import (
	"context"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// SynthesisRequest carries everything needed to generate a query.
type SynthesisRequest struct {
	Question    string
	Context     string
	CurrentDate string
	Tier        models.ComplexityTier
}

// RepairRequest carries a failed query plus the database's error text
// for the single allowed fix attempt.
type RepairRequest struct {
	Question     string
	Context      string
	FailedSQL    string
	ErrorMessage string
}

// Synthesizer is the LLM collaborator boundary. Implementations
// return raw SQL text; callers strip code fences defensively.
type Synthesizer interface {
	// Synthesize generates a SQL query for a question.
	Synthesize(ctx context.Context, req SynthesisRequest) (string, error)

	// Repair regenerates a query that failed to execute.
	Repair(ctx context.Context, req RepairRequest) (string, error)

	// Analyze turns executed rows into a human-readable answer.
	Analyze(ctx context.Context, question string, rows []map[string]any) (string, error)
}

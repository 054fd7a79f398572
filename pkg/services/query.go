package services

import (
	"context"
	"strings"
	"time"

	"github.com/genbi-ai/genbi-engine/pkg/apperrors"
	"github.com/genbi-ai/genbi-engine/pkg/cost"
	"github.com/genbi-ai/genbi-engine/pkg/models"
	sqlcheck "github.com/genbi-ai/genbi-engine/pkg/sql"
)

// QueryWithContext answers a question against caller-supplied schema
// context, bypassing catalog resolution. There is no repair cycle:
// callers own the context, so a failed execution surfaces directly.
func (o *Orchestrator) QueryWithContext(ctx context.Context, question, schemaContext string) *models.WorkflowResult {
	start := time.Now()
	result := models.NewWorkflowResult(question)

	question = strings.TrimSpace(question)
	if question == "" {
		result.Message = apperrors.ErrEmptyQuestion.Error()
		return o.finish(result, start, nil)
	}
	if strings.TrimSpace(schemaContext) == "" {
		result.Message = apperrors.ErrContextRequired.Error()
		return o.finish(result, start, nil)
	}
	result.Complexity = cost.Classify(question)

	stepStart := time.Now()
	sqlText, err := o.synthesize(ctx, question, schemaContext, result.Complexity)
	if err != nil {
		result.AddStep(models.StepSQLGeneration, models.StepError, err.Error(), time.Since(stepStart))
		result.Message = "Failed to generate SQL"
		return o.finish(result, start, nil)
	}
	result.SQL = sqlText
	result.AddStep(models.StepSQLGeneration, models.StepSuccess, "", time.Since(stepStart))

	verdict := sqlcheck.Validate(sqlText)
	if !verdict.Valid {
		result.AddStep(models.StepSecurityValidation, models.StepError, verdict.Reason, 0)
		result.Message = verdict.Reason
		return o.finish(result, start, nil)
	}
	result.AddStep(models.StepSecurityValidation, models.StepSuccess, strings.Join(verdict.Warnings, "; "), 0)

	stepStart = time.Now()
	rows, err := o.execute(ctx, sqlText)
	if err != nil {
		result.AddStep(models.StepSQLExecution, models.StepError, err.Error(), time.Since(stepStart))
		result.Message = friendlyExecMessage(err)
		return o.finish(result, start, nil)
	}
	result.AddStep(models.StepSQLExecution, models.StepSuccess, rowCountMessage(rows), time.Since(stepStart))
	result.Rows = rows
	result.RowCount = len(rows)

	if o.cfg.Orchestrator.IncludeAnalysis && len(rows) > 0 {
		stepStart = time.Now()
		analysis, err := o.synth.Analyze(ctx, question, rows)
		if err != nil {
			result.AddStep(models.StepAnalysis, models.StepError, err.Error(), time.Since(stepStart))
		} else {
			result.Analysis = analysis
			result.AddStep(models.StepAnalysis, models.StepSuccess, "", time.Since(stepStart))
		}
	}

	result.Status = models.StepSuccess
	result.Message = "Query executed successfully"
	return o.finish(result, start, nil)
}

// FixAndRetry repairs a known-failed query and executes the corrected
// version once.
func (o *Orchestrator) FixAndRetry(ctx context.Context, question, schemaContext, failedSQL, errorMessage string) *models.WorkflowResult {
	start := time.Now()
	result := models.NewWorkflowResult(question)
	result.SQL = failedSQL

	if strings.TrimSpace(question) == "" || strings.TrimSpace(schemaContext) == "" ||
		strings.TrimSpace(failedSQL) == "" || strings.TrimSpace(errorMessage) == "" {
		result.Message = "question, context, failed_sql, and error_message are all required"
		return o.finish(result, start, nil)
	}

	stepStart := time.Now()
	fixed, err := o.repair(ctx, question, schemaContext, failedSQL, errorMessage)
	if err != nil {
		result.AddStep(models.StepSQLFixAttempt, models.StepError, err.Error(), time.Since(stepStart))
		result.Message = "Failed to fix SQL"
		return o.finish(result, start, nil)
	}
	result.AddStep(models.StepSQLFixAttempt, models.StepSuccess, "corrected query generated", time.Since(stepStart))
	result.SQL = fixed
	result.Repaired = true

	verdict := sqlcheck.Validate(fixed)
	if !verdict.Valid {
		result.AddStep(models.StepSecurityValidation, models.StepError, verdict.Reason, 0)
		result.Message = verdict.Reason
		return o.finish(result, start, nil)
	}
	result.AddStep(models.StepSecurityValidation, models.StepSuccess, strings.Join(verdict.Warnings, "; "), 0)

	stepStart = time.Now()
	rows, err := o.execute(ctx, fixed)
	if err != nil {
		result.AddStep(models.StepSQLExecutionRetry, models.StepError, err.Error(), time.Since(stepStart))
		result.Message = friendlyExecMessage(err)
		return o.finish(result, start, nil)
	}
	result.AddStep(models.StepSQLExecutionRetry, models.StepSuccess, rowCountMessage(rows), time.Since(stepStart))
	result.Rows = rows
	result.RowCount = len(rows)
	result.Status = models.StepSuccess
	result.Message = "Fix and retry completed"
	return o.finish(result, start, nil)
}

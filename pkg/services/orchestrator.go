// Package services contains the workflow orchestrator: the state
// machine that turns a natural-language question into a validated,
// executed query, plus the task-dispatch surface around it.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/adapters/datasource"
	"github.com/genbi-ai/genbi-engine/pkg/apperrors"
	"github.com/genbi-ai/genbi-engine/pkg/cache"
	"github.com/genbi-ai/genbi-engine/pkg/catalog"
	"github.com/genbi-ai/genbi-engine/pkg/config"
	"github.com/genbi-ai/genbi-engine/pkg/cost"
	"github.com/genbi-ai/genbi-engine/pkg/llm"
	"github.com/genbi-ai/genbi-engine/pkg/models"
	"github.com/genbi-ai/genbi-engine/pkg/monitor"
	sqlcheck "github.com/genbi-ai/genbi-engine/pkg/sql"
)

// Orchestrator drives the question-to-answer workflow. Every
// collaborator comes in through the constructor so tests can swap in
// fakes. A run is a linear sequence of steps; the workflow log is
// built by appending step results, never by mutating shared state.
type Orchestrator struct {
	store     *catalog.Store
	conn      datasource.Conn
	synth     llm.Synthesizer
	results   *cache.ResultCache
	prompts   *cache.PromptCache
	optimizer *cost.Optimizer
	recorder  *monitor.Recorder
	cfg       *config.Config
	logger    *zap.Logger

	mu              sync.Mutex
	sessionContexts map[string]string
	lastWorkflow    *models.WorkflowResult
	initialized     bool
}

// NewOrchestrator creates an orchestrator with explicit dependencies.
func NewOrchestrator(
	store *catalog.Store,
	conn datasource.Conn,
	synth llm.Synthesizer,
	results *cache.ResultCache,
	prompts *cache.PromptCache,
	recorder *monitor.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:           store,
		conn:            conn,
		synth:           synth,
		results:         results,
		prompts:         prompts,
		optimizer:       cost.NewOptimizer(prompts),
		recorder:        recorder,
		cfg:             cfg,
		logger:          logger.Named("orchestrator"),
		sessionContexts: make(map[string]string),
	}
}

// RunWorkflow answers one question end to end: resolve schema context,
// synthesize SQL, validate it, execute it with at most one repair
// cycle, then optionally analyze the rows. It never returns an error;
// failures are reported through the result's status and workflow log.
func (o *Orchestrator) RunWorkflow(ctx context.Context, question, userContext, session string) *models.WorkflowResult {
	start := time.Now()
	result := models.NewWorkflowResult(question)

	question = strings.TrimSpace(question)
	if question == "" {
		result.Message = apperrors.ErrEmptyQuestion.Error()
		return o.finish(result, start, nil)
	}

	tier := cost.Classify(question)
	result.Complexity = tier

	stepStart := time.Now()
	schemaCtx, optim, err := o.resolveSchemaContext(question, session, tier)
	if err != nil {
		result.AddStep(models.StepSchemaContext, models.StepError, err.Error(), time.Since(stepStart))
		result.Message = "Failed to get schema context"
		return o.finish(result, start, nil)
	}
	result.AddStep(models.StepSchemaContext, models.StepSuccess, contextSource(optim), time.Since(stepStart))
	fullCtx := catalog.AppendUserContext(schemaCtx, userContext)

	stepStart = time.Now()
	sqlText, err := o.synthesize(ctx, question, fullCtx, tier)
	if err != nil {
		result.AddStep(models.StepSQLGeneration, models.StepError, err.Error(), time.Since(stepStart))
		result.Message = "Failed to generate SQL"
		return o.finish(result, start, optim)
	}
	result.SQL = sqlText
	result.AddStep(models.StepSQLGeneration, models.StepSuccess, "", time.Since(stepStart))

	verdict := sqlcheck.Validate(sqlText)
	if !verdict.Valid {
		result.AddStep(models.StepSecurityValidation, models.StepError, verdict.Reason, 0)
		result.Message = verdict.Reason
		return o.finish(result, start, optim)
	}
	result.AddStep(models.StepSecurityValidation, models.StepSuccess, strings.Join(verdict.Warnings, "; "), 0)

	var rows []map[string]any
	if cached, ok := o.results.Get(sqlText); ok {
		rows = cached
		result.FromCache = true
		result.AddStep(models.StepSQLExecution, models.StepSuccess, "served from result cache", 0)
	} else {
		stepStart = time.Now()
		rows, err = o.execute(ctx, sqlText)
		if err == nil {
			result.AddStep(models.StepSQLExecution, models.StepSuccess, rowCountMessage(rows), time.Since(stepStart))
		} else {
			result.AddStep(models.StepSQLExecution, models.StepError, err.Error(), time.Since(stepStart))

			rows, sqlText, err = o.repairAndRetry(ctx, result, question, fullCtx, sqlText, err)
			if err != nil {
				return o.finish(result, start, optim)
			}
			result.SQL = sqlText
			result.Repaired = true
		}
		o.results.Put(sqlText, rows)
	}

	result.Rows = rows
	result.RowCount = len(rows)

	if o.cfg.Orchestrator.IncludeAnalysis && len(rows) > 0 {
		stepStart = time.Now()
		analysis, err := o.synth.Analyze(ctx, question, rows)
		if err != nil {
			// Non-fatal: the rows already answer the question.
			o.logger.Warn("analysis failed", zap.Error(err))
			result.AddStep(models.StepAnalysis, models.StepError, err.Error(), time.Since(stepStart))
		} else {
			result.Analysis = analysis
			result.AddStep(models.StepAnalysis, models.StepSuccess, "", time.Since(stepStart))
		}
	}

	result.Status = models.StepSuccess
	result.Message = "BI workflow completed successfully"

	if o.cfg.Orchestrator.CacheSchemaContext && session != "" {
		o.mu.Lock()
		o.sessionContexts[session] = schemaCtx
		o.mu.Unlock()
	}
	return o.finish(result, start, optim)
}

// repairAndRetry runs the single allowed repair cycle after a failed
// execution: regenerate the query from the database error, re-validate
// it, and execute once more. The returned error is non-nil when the
// run is over; the caller's result already carries the step log and
// failure message.
func (o *Orchestrator) repairAndRetry(ctx context.Context, result *models.WorkflowResult, question, fullCtx, failedSQL string, execErr error) ([]map[string]any, string, error) {
	stepStart := time.Now()
	fixed, err := o.repair(ctx, question, fullCtx, failedSQL, execErr.Error())
	if err != nil {
		result.AddStep(models.StepSQLFixAttempt, models.StepError, err.Error(), time.Since(stepStart))
		result.Message = friendlyExecMessage(execErr)
		return nil, failedSQL, apperrors.ErrRepairExhausted
	}
	result.AddStep(models.StepSQLFixAttempt, models.StepSuccess, "corrected query generated", time.Since(stepStart))

	verdict := sqlcheck.Validate(fixed)
	if !verdict.Valid {
		result.AddStep(models.StepSecurityValidation, models.StepError, verdict.Reason, 0)
		result.Message = verdict.Reason
		return nil, failedSQL, apperrors.ErrSecurityRejected
	}

	stepStart = time.Now()
	rows, retryErr := o.execute(ctx, fixed)
	if retryErr != nil {
		result.AddStep(models.StepSQLExecutionRetry, models.StepError, retryErr.Error(), time.Since(stepStart))
		result.Message = "SQL execution failed after retry"
		return nil, fixed, apperrors.ErrRepairExhausted
	}
	result.AddStep(models.StepSQLExecutionRetry, models.StepSuccess, rowCountMessage(rows), time.Since(stepStart))
	return rows, fixed, nil
}

// resolveSchemaContext produces the schema description for a question.
// Simple questions go through the compressing optimizer (cheap path);
// everything else gets the full resolver rendering. A session with a
// previously cached context reuses it unchanged.
func (o *Orchestrator) resolveSchemaContext(question, session string, tier models.ComplexityTier) (string, *cost.Metrics, error) {
	cat := o.store.Snapshot()
	if cat == nil || cat.TableCount() == 0 {
		return "", nil, apperrors.ErrCatalogNotBuilt
	}

	if o.cfg.Orchestrator.CacheSchemaContext && session != "" {
		o.mu.Lock()
		cached, ok := o.sessionContexts[session]
		o.mu.Unlock()
		if ok {
			return cached, nil, nil
		}
	}

	if tier == models.ComplexitySimple {
		compressed, metrics := o.optimizer.CompressSchema(question, cat)
		return compressed, &metrics, nil
	}

	rendered, err := catalog.ResolveContext(cat, question, "", o.cfg.Orchestrator.RelatedTableDepth)
	if err != nil {
		return "", nil, err
	}
	return rendered, nil, nil
}

func (o *Orchestrator) synthesize(ctx context.Context, question, fullCtx string, tier models.ComplexityTier) (string, error) {
	raw, err := o.synth.Synthesize(ctx, llm.SynthesisRequest{
		Question:    question,
		Context:     fullCtx,
		CurrentDate: time.Now().Format("2006-01-02"),
		Tier:        tier,
	})
	if err != nil {
		return "", err
	}
	cleaned := sqlcheck.Clean(raw)
	if strings.TrimSpace(cleaned) == "" {
		return "", errors.New("synthesizer returned an empty query")
	}
	return cleaned, nil
}

func (o *Orchestrator) repair(ctx context.Context, question, fullCtx, failedSQL, errorMessage string) (string, error) {
	raw, err := o.synth.Repair(ctx, llm.RepairRequest{
		Question:     question,
		Context:      fullCtx,
		FailedSQL:    failedSQL,
		ErrorMessage: errorMessage,
	})
	if err != nil {
		return "", err
	}
	cleaned := sqlcheck.Clean(raw)
	if strings.TrimSpace(cleaned) == "" {
		return "", errors.New("repair returned an empty query")
	}
	return cleaned, nil
}

func (o *Orchestrator) execute(ctx context.Context, query string) ([]map[string]any, error) {
	execCtx, cancel := context.WithTimeout(ctx, o.cfg.Orchestrator.QueryTimeout())
	defer cancel()
	return o.conn.Execute(execCtx, query, o.cfg.Orchestrator.RowLimit)
}

// finish stamps the duration, records monitoring metrics, and retains
// the last successful run for status reporting.
func (o *Orchestrator) finish(result *models.WorkflowResult, start time.Time, optim *cost.Metrics) *models.WorkflowResult {
	result.DurationSec = time.Since(start).Seconds()

	metrics := monitor.QueryMetrics{
		Question:       result.Question,
		Complexity:     result.Complexity,
		ProcessingTime: result.DurationSec,
		CacheHit:       result.FromCache,
		Success:        result.Succeeded(),
	}
	if optim != nil {
		metrics.OptimizationApplied = true
		metrics.TokensUsed = optim.TokensSaved()
		metrics.CostEstimated = optim.EstimatedCostSaved
		metrics.CacheHit = metrics.CacheHit || optim.CacheHit
	}
	if !result.Succeeded() {
		metrics.ErrorMessage = result.Message
	}
	o.recorder.Record(metrics)

	if result.Succeeded() {
		o.mu.Lock()
		o.lastWorkflow = result
		o.mu.Unlock()
	}
	return result
}

func contextSource(optim *cost.Metrics) string {
	if optim == nil {
		return ""
	}
	if optim.CacheHit {
		return "compressed schema context (cache hit)"
	}
	return "compressed schema context"
}

func rowCountMessage(rows []map[string]any) string {
	return fmt.Sprintf("%d rows", len(rows))
}

// friendlyExecMessage turns a classified execution error into the
// user-facing failure message; unclassified errors pass through as-is.
func friendlyExecMessage(err error) string {
	var execErr *datasource.ExecError
	if errors.As(err, &execErr) {
		return execErr.Friendly()
	}
	return err.Error()
}

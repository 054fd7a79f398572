package services

import (
	"context"
	"fmt"

	"github.com/genbi-ai/genbi-engine/pkg/catalog"
	"github.com/genbi-ai/genbi-engine/pkg/models"
	"github.com/genbi-ai/genbi-engine/pkg/monitor"
)

// TaskType discriminates the orchestrator's task surface. The set is
// closed: Dispatch matches it exhaustively and anything else yields an
// error result naming the unrecognized type.
type TaskType string

const (
	TaskInitializeSystem   TaskType = "initialize_system"
	TaskRefreshSystem      TaskType = "refresh_system"
	TaskCompleteBIWorkflow TaskType = "complete_bi_workflow"
	TaskQueryWithContext   TaskType = "query_with_context"
	TaskFixAndRetry        TaskType = "fix_and_retry"
	TaskAddBusinessContext TaskType = "add_business_context"
	TaskValidateCatalog    TaskType = "validate_catalog"
	TaskGetSystemStatus    TaskType = "get_system_status"
)

// Task is one typed request to the orchestrator. Only the fields
// relevant to the task's type are read.
type Task struct {
	Type TaskType `json:"type"`

	// complete_bi_workflow / query_with_context / fix_and_retry
	Question     string `json:"question,omitempty"`
	UserContext  string `json:"user_context,omitempty"`
	Session      string `json:"session,omitempty"`
	Context      string `json:"context,omitempty"`
	FailedSQL    string `json:"failed_sql,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// add_business_context
	BusinessContext *BusinessContext `json:"business_context,omitempty"`
}

// TaskResult is the uniform response envelope: a status, a message,
// and the payload of whichever task ran.
type TaskResult struct {
	Status       models.StepStatus      `json:"status"`
	Message      string                 `json:"message"`
	Workflow     *models.WorkflowResult `json:"workflow,omitempty"`
	SystemStatus *SystemStatus          `json:"system_status,omitempty"`
	Findings     *catalog.Findings      `json:"findings,omitempty"`
	Report       *monitor.Report        `json:"performance,omitempty"`
}

func successResult(message string) TaskResult {
	return TaskResult{Status: models.StepSuccess, Message: message}
}

func errorResult(message string) TaskResult {
	return TaskResult{Status: models.StepError, Message: message}
}

// Dispatch routes one task to its handler. Unknown task types return
// an error result; they never panic or crash the server.
func (o *Orchestrator) Dispatch(ctx context.Context, task Task) TaskResult {
	switch task.Type {
	case TaskInitializeSystem:
		if err := o.InitializeSystem(ctx); err != nil {
			return errorResult(fmt.Sprintf("Failed to initialize system: %v", err))
		}
		return successResult("BI system initialized successfully")

	case TaskRefreshSystem:
		if err := o.RefreshSystem(ctx); err != nil {
			return errorResult(fmt.Sprintf("Failed to refresh system: %v", err))
		}
		return successResult("System refreshed successfully")

	case TaskCompleteBIWorkflow:
		wf := o.RunWorkflow(ctx, task.Question, task.UserContext, task.Session)
		return workflowResult(wf)

	case TaskQueryWithContext:
		wf := o.QueryWithContext(ctx, task.Question, task.Context)
		return workflowResult(wf)

	case TaskFixAndRetry:
		wf := o.FixAndRetry(ctx, task.Question, task.Context, task.FailedSQL, task.ErrorMessage)
		return workflowResult(wf)

	case TaskAddBusinessContext:
		if task.BusinessContext == nil {
			return errorResult("business_context payload is required")
		}
		if err := o.AddBusinessContext(*task.BusinessContext); err != nil {
			return errorResult(fmt.Sprintf("Failed to add business context: %v", err))
		}
		return successResult("Business context added")

	case TaskValidateCatalog:
		findings, err := o.ValidateCatalog()
		if err != nil {
			return errorResult(fmt.Sprintf("Failed to validate catalog: %v", err))
		}
		result := successResult("Catalog validated")
		result.Findings = &findings
		return result

	case TaskGetSystemStatus:
		status := o.SystemStatus(ctx)
		report := o.PerformanceReport()
		result := successResult("System status retrieved")
		result.SystemStatus = &status
		result.Report = &report
		return result

	default:
		return errorResult(fmt.Sprintf("unknown task type: %s", task.Type))
	}
}

func workflowResult(wf *models.WorkflowResult) TaskResult {
	return TaskResult{Status: wf.Status, Message: wf.Message, Workflow: wf}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/services"
)

// TasksHandler exposes the orchestrator's task-dispatch entry point.
type TasksHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewTasksHandler creates a TasksHandler.
func NewTasksHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *TasksHandler {
	return &TasksHandler{orchestrator: orchestrator, logger: logger}
}

// RegisterRoutes registers the task handler's routes on the given mux.
func (h *TasksHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/tasks", h.Dispatch)
}

// Dispatch handles POST /api/tasks: decode one typed task, run it, and
// return the structured result. A task that fails still answers 200
// with status "error" in the body; only malformed requests get 4xx.
func (h *TasksHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var task services.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON task")
		return
	}
	if task.Type == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "task type is required")
		return
	}

	result := h.orchestrator.Dispatch(r.Context(), task)

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode task result", zap.Error(err))
	}
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/service"
)

// TaskHandler handles task CRUD HTTP requests for the authenticated user.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleList returns the user's tasks, newest first.
// GET /api/tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID)
	if err != nil {
		writeTaskError(w, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

// HandleCreate creates a pending task.
// POST /api/tasks
// Request: {"title":"...","description":"..."}
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req createTaskRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, domain.NewTask{Title: req.Title, Description: req.Description})
	if err != nil {
		writeTaskError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskDTO(task))
}

// HandleUpdate applies a partial update.
// PATCH /api/tasks/{id}
// Request: {"title":"...","description":"...","status":"pending|completed"} (all optional)
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req updateTaskRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	patch, err := req.toDomain()
	if err != nil {
		writeTaskError(w, "update task", err)
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, r.PathValue("id"), patch)
	if err != nil {
		writeTaskError(w, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleDelete removes a task.
// DELETE /api/tasks/{id}
// Response: 204 No Content
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	if err := h.tasks.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeTaskError(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeTaskError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, validationText(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Task not found.")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}

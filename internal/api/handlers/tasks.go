package handlers

import (
	"net/http"

	"github.com/hugh/go-crm/internal/api/dto"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/database/models"
)

type TaskHandler struct {
	tasks *crm.Tasks
	rs    *Responder
}

func NewTaskHandler(tasks *crm.Tasks, rs *Responder) *TaskHandler {
	return &TaskHandler{tasks: tasks, rs: rs}
}

// List handles GET /api/v1/teams/{teamID}/tasks?status=&project_id=&assigned_to=
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	filter := crm.TaskFilter{Status: models.TaskStatus(r.URL.Query().Get("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		h.rs.invalid(w, map[string]string{"status": "Unknown status"})
		return
	}
	if filter.ProjectID, ok = h.rs.queryID(w, r, "project_id"); !ok {
		return
	}
	if filter.AssignedTo, ok = h.rs.queryID(w, r, "assigned_to"); !ok {
		return
	}

	list, err := h.tasks.List(r.Context(), teamID, filter)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeList(w, list)
}

// Create handles POST /api/v1/teams/{teamID}/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), teamID, req.ToInput())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Get handles GET /api/v1/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update handles PATCH /api/v1/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	task, err := h.tasks.Update(r.Context(), id, req.ToPatch())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.tasks.Remove(r.Context(), id); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

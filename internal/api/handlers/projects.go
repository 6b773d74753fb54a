package handlers

import (
	"net/http"

	"github.com/hugh/go-crm/internal/api/dto"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/database/models"
)

type ProjectHandler struct {
	projects *crm.Projects
	rs       *Responder
}

func NewProjectHandler(projects *crm.Projects, rs *Responder) *ProjectHandler {
	return &ProjectHandler{projects: projects, rs: rs}
}

// List handles GET /api/v1/teams/{teamID}/projects?status=&contact_id=
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	filter := crm.ProjectFilter{Status: models.ProjectStatus(r.URL.Query().Get("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		h.rs.invalid(w, map[string]string{"status": "Unknown status"})
		return
	}
	if filter.ContactID, ok = h.rs.queryID(w, r, "contact_id"); !ok {
		return
	}

	list, err := h.projects.List(r.Context(), teamID, filter)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeList(w, list)
}

// Create handles POST /api/v1/teams/{teamID}/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}
	var req dto.CreateProjectRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	project, err := h.projects.Create(r.Context(), teamID, req.ToInput())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// Get handles GET /api/v1/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	project, err := h.projects.Get(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Update handles PATCH /api/v1/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	project, err := h.projects.Update(r.Context(), id, req.ToPatch())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /api/v1/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.projects.Remove(r.Context(), id); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

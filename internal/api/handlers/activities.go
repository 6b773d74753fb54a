package handlers

import (
	"net/http"

	"github.com/hugh/go-crm/internal/api/dto"
	"github.com/hugh/go-crm/internal/crm"
)

type ActivityHandler struct {
	activities *crm.Activities
	rs         *Responder
}

func NewActivityHandler(activities *crm.Activities, rs *Responder) *ActivityHandler {
	return &ActivityHandler{activities: activities, rs: rs}
}

// List handles GET /api/v1/teams/{teamID}/activities?contact_id=&project_id=
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	var filter crm.ActivityFilter
	if filter.ContactID, ok = h.rs.queryID(w, r, "contact_id"); !ok {
		return
	}
	if filter.ProjectID, ok = h.rs.queryID(w, r, "project_id"); !ok {
		return
	}

	list, err := h.activities.List(r.Context(), teamID, filter)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeList(w, list)
}

// Create handles POST /api/v1/teams/{teamID}/activities
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}
	var req dto.CreateActivityRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	activity, err := h.activities.Create(r.Context(), teamID, req.ToInput())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, activity)
}

// Get handles GET /api/v1/activities/{id}
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	activity, err := h.activities.Get(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// Update handles PATCH /api/v1/activities/{id}
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateActivityRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	activity, err := h.activities.Update(r.Context(), id, req.ToPatch())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// Delete handles DELETE /api/v1/activities/{id}
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.activities.Remove(r.Context(), id); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/hugh/go-crm/internal/api/dto"
	"github.com/hugh/go-crm/internal/teams"
)

type TeamHandler struct {
	teams *teams.Service
	rs    *Responder
}

func NewTeamHandler(teams *teams.Service, rs *Responder) *TeamHandler {
	return &TeamHandler{teams: teams, rs: rs}
}

// List handles GET /api/v1/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.teams.List(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeList(w, list)
}

// Create handles POST /api/v1/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TeamRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	team, err := h.teams.Create(r.Context(), req.Name)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// Get handles GET /api/v1/teams/{teamID}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	team, err := h.teams.Get(r.Context(), teamID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// Update handles PATCH /api/v1/teams/{teamID}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}
	var req dto.TeamRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	team, err := h.teams.Update(r.Context(), teamID, req.Name)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// Members handles GET /api/v1/teams/{teamID}/members
func (h *TeamHandler) Members(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	members, err := h.teams.GetMembers(r.Context(), teamID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeList(w, members)
}

// AddMember handles POST /api/v1/teams/{teamID}/members
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}
	var req dto.AddMemberRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	membership, err := h.teams.AddMember(r.Context(), teamID, req.Email, req.Role)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

// RemoveMember handles DELETE /api/v1/teams/{teamID}/members/{userID}
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}
	userID, ok := h.rs.urlID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.teams.RemoveMember(r.Context(), teamID, userID); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateMemberRole handles PATCH /api/v1/teams/{teamID}/members/{userID}
func (h *TeamHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}
	userID, ok := h.rs.urlID(w, r, "userID")
	if !ok {
		return
	}
	var req dto.UpdateMemberRoleRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	if err := h.teams.UpdateMemberRole(r.Context(), teamID, userID, req.Role); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Role updated"})
}

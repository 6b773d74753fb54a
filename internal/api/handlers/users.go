package handlers

import (
	"net/http"

	"github.com/hugh/go-crm/internal/api/dto"
	"github.com/hugh/go-crm/internal/users"
)

type UserHandler struct {
	users *users.Service
	rs    *Responder
}

func NewUserHandler(users *users.Service, rs *Responder) *UserHandler {
	return &UserHandler{users: users, rs: rs}
}

// Me handles GET /api/v1/users/me. Anonymous callers get a null body.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Current(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Name)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), req.ToPatch())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

package handlers

import (
	"net/http"

	"github.com/hugh/go-crm/internal/api/dto"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/database/models"
)

type ContactHandler struct {
	contacts *crm.Contacts
	rs       *Responder
}

func NewContactHandler(contacts *crm.Contacts, rs *Responder) *ContactHandler {
	return &ContactHandler{contacts: contacts, rs: rs}
}

// List handles GET /api/v1/teams/{teamID}/contacts. With ?q= it searches by
// name instead.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	var (
		list []models.Contact
		err  error
	)
	if q := r.URL.Query(); q.Has("q") {
		list, err = h.contacts.Search(r.Context(), teamID, q.Get("q"))
	} else {
		list, err = h.contacts.List(r.Context(), teamID)
	}
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeList(w, list)
}

// Create handles POST /api/v1/teams/{teamID}/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}
	var req dto.CreateContactRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	contact, err := h.contacts.Create(r.Context(), teamID, req.ToInput())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

// Get handles GET /api/v1/contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	contact, err := h.contacts.Get(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// Update handles PATCH /api/v1/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateContactRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	contact, err := h.contacts.Update(r.Context(), id, req.ToPatch())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// Delete handles DELETE /api/v1/contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.contacts.Remove(r.Context(), id); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

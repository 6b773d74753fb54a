package handlers

import (
	"net/http"
	"strconv"

	"github.com/hugh/go-crm/internal/dashboard"
)

type DashboardHandler struct {
	dashboard *dashboard.Service
	rs        *Responder
}

func NewDashboardHandler(svc *dashboard.Service, rs *Responder) *DashboardHandler {
	return &DashboardHandler{dashboard: svc, rs: rs}
}

// Stats handles GET /api/v1/teams/{teamID}/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	stats, err := h.dashboard.Stats(r.Context(), teamID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Activities handles GET /api/v1/teams/{teamID}/dashboard/activities?limit=
func (h *DashboardHandler) Activities(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.rs.invalid(w, map[string]string{"limit": "Limit must be a positive integer"})
			return
		}
		limit = n
	}

	recent, err := h.dashboard.RecentActivities(r.Context(), teamID, limit)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeList(w, recent)
}

// Pipeline handles GET /api/v1/teams/{teamID}/dashboard/pipeline
func (h *DashboardHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	pipeline, err := h.dashboard.Pipeline(r.Context(), teamID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline)
}

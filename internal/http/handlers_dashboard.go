package httpx

import (
	"net/http"

	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

// DashboardHandlers provides HTTP handlers for the dashboard aggregates.
type DashboardHandlers struct {
	Svc *service.DashboardService
}

// Get handles HTTP requests for the full dashboard payload.
func (h *DashboardHandlers) Get(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Svc.Get(r.Context())
	if err != nil {
		WriteServiceError(w, err, "dashboard_failed")
		return
	}

	WriteJSON(w, http.StatusOK, dashboard)
}

// Stats handles HTTP requests for the headline counters only.
func (h *DashboardHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, err, "dashboard_failed")
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

package handler

import (
	"net/http"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/service"
)

// DashboardHandler serves creator analytics and the admin views.
type DashboardHandler struct {
	Dashboard *service.DashboardService
	Errors    *apperr.ErrorLog
	Resp      *Responder
}

func (h *DashboardHandler) Creator(w http.ResponseWriter, r *http.Request) {
	d, err := h.Dashboard.Creator(r.Context(), owner(r))
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionFetchDashboard, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, d)
}

func (h *DashboardHandler) ErrorLog(w http.ResponseWriter, r *http.Request) {
	h.Resp.JSON(w, http.StatusOK, h.Errors.Entries())
}

func (h *DashboardHandler) System(w http.ResponseWriter, r *http.Request) {
	s, err := h.Dashboard.System(r.Context())
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionFetchDashboard, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, s)
}

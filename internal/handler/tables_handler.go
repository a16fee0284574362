package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.HealthCheck(); err != nil {
		h.Logger.Warn("health check failed", zap.Error(err))
		writeSuccess(w, HealthResponse{Status: "degraded", Database: "unavailable"}, http.StatusServiceUnavailable)
		return
	}

	writeSuccess(w, HealthResponse{Status: "ok", Database: "ok"}, http.StatusOK)
}

func (h *Handlers) TablesHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.TablesService.GetTables(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, report, http.StatusOK)
}

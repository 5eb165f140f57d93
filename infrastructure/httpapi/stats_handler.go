package httpapi

import (
	"net/http"

	"github.com/destinyy00/skillswap/observability"
)

type StatsHandler struct {
	monitoring *observability.MonitoringManager
}

func NewStatsHandler(monitoring *observability.MonitoringManager) *StatsHandler {
	return &StatsHandler{monitoring: monitoring}
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.monitoring.GetLatest())
}

func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

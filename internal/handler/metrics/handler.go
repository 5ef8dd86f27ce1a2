package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	metricsService "github.com/dpetrov/infracopilot/backend/internal/service/metrics"
	"github.com/dpetrov/infracopilot/backend/pkg/utils"
)

// Handler serves the 24h dashboard trend endpoint.
type Handler struct {
	svc *metricsService.Service
}

// New creates the metrics handler.
func New(svc *metricsService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the metrics endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/metrics", h.handleMetrics)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot := h.svc.Snapshot(r.Context())
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"data": snapshot,
	})
}

package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	healthService "github.com/dpetrov/infracopilot/backend/internal/service/health"
	"github.com/dpetrov/infracopilot/backend/pkg/utils"
)

// Handler serves the direct health query surface.
type Handler struct {
	aggregator *healthService.Aggregator
}

// New creates the health handler.
func New(aggregator *healthService.Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// RegisterRoutes registers the health endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthcheck", h.handleHealthcheck)
}

func (h *Handler) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	snapshot := h.aggregator.Aggregate(r.Context())
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"data": snapshot,
	})
}

// Liveness answers the bare process liveness probe.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

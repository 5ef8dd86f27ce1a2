package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dpetrov/infracopilot/backend/internal/model/health"
	"github.com/dpetrov/infracopilot/backend/internal/model/metrics"
	aiService "github.com/dpetrov/infracopilot/backend/internal/service/ai"
	"github.com/dpetrov/infracopilot/backend/internal/service/chatops"
	"github.com/dpetrov/infracopilot/backend/pkg/utils"
)

// Handler serves the conversational surface: chat, report generation and
// model listing. chatOps is nil when model credentials are missing; the
// affected endpoints then answer with a descriptive error.
type Handler struct {
	chatOps *chatops.Service
	models  *aiService.ModelLister
}

// New creates the chat handler.
func New(chatOps *chatops.Service, models *aiService.ModelLister) *Handler {
	return &Handler{chatOps: chatOps, models: models}
}

// RegisterRoutes registers the conversational endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/report", h.handleReport)
	r.Get("/models", h.handleModels)
}

type chatRequest struct {
	Input     string `json:"input"`
	Mode      string `json:"mode"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	OK             bool              `json:"ok"`
	SessionID      string            `json:"sessionId"`
	ToolUsed       string            `json:"toolUsed"`
	Text           string            `json:"text"`
	UsedModel      string            `json:"usedModel,omitempty"`
	Health         *health.Snapshot  `json:"health,omitempty"`
	Metrics        *metrics.Snapshot `json:"metrics,omitempty"`
	ReportMarkdown *string           `json:"reportMarkdown,omitempty"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.chatOps == nil {
		utils.RespondError(w, http.StatusInternalServerError, "model credentials missing: chat is unavailable")
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.chatOps.Respond(r.Context(), payload.Input, payload.Mode, payload.SessionID)
	if err != nil {
		log.Printf("[chat] turn failed: %v", err)
		switch {
		case errors.Is(err, chatops.ErrToolExecution):
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		case errors.Is(err, chatops.ErrGeneration):
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	resp := chatResponse{
		OK:        true,
		SessionID: result.SessionID,
		ToolUsed:  result.ToolUsed,
		Text:      result.Text,
		UsedModel: result.UsedModel,
		Health:    result.Health,
		Metrics:   result.Metrics,
	}
	if result.HasReport {
		resp.ReportMarkdown = &result.ReportMarkdown
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

type reportRequest struct {
	Health  *health.Snapshot  `json:"health"`
	Metrics *metrics.Snapshot `json:"metrics"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if h.chatOps == nil {
		utils.RespondError(w, http.StatusInternalServerError, "model credentials missing: report generation is unavailable")
		return
	}

	var payload reportRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	md, err := h.chatOps.GenerateReport(r.Context(), payload.Health, payload.Metrics)
	if err != nil {
		log.Printf("[report] generation failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":             true,
		"reportMarkdown": md,
		"usedModel":      h.chatOps.ModelName(),
	})
}

func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.models.List(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"models": models,
	})
}

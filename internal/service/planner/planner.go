package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dpetrov/infracopilot/backend/internal/model/chat"
)

const routerSystemPrompt = "You are an SRE ChatOps router. Decide the best action for the user.\n" +
	"Return ONLY a JSON object with keys:\n" +
	"  action: one of [chat, health, metrics, report, daily_report]\n" +
	"  why: short reason\n" +
	"  need_tools: true/false\n" +
	"Routing rules:\n" +
	"- If user asks to run/check health/status/uptime/warnings/local system => action=health\n" +
	"- If user asks charts/trends/last 24h/metrics => action=metrics\n" +
	"- If user asks report/summary => action=report\n" +
	"- If user asks daily report => action=daily_report\n" +
	"- If user asks follow-up like 'give details' and ctx has last_health => action=health\n" +
	"- Otherwise action=chat\n" +
	"Output must be valid JSON only."

// Planner turns a free-text message into a routing decision. It is a routing
// layer, not an agent loop: at most one model call per message, and any
// malformed output falls back to the chat action.
type Planner struct {
	chatModel model.BaseChatModel
}

// New creates a planner around a deterministic (temperature 0) model.
func New(chatModel model.BaseChatModel) *Planner {
	return &Planner{chatModel: chatModel}
}

type plannerPayload struct {
	Action string `json:"action"`
	Why    string `json:"why"`
	// Raw so a missing or non-boolean value can fall back to the
	// action-based default instead of failing the whole object.
	NeedTools json.RawMessage `json:"need_tools"`
}

func (p *plannerPayload) needTools(action string) bool {
	fallback := action != string(chat.ActionChat)
	if len(p.NeedTools) == 0 {
		return fallback
	}
	var val bool
	if err := json.Unmarshal(p.NeedTools, &val); err != nil {
		return fallback
	}
	return val
}

// Plan classifies one message. A mode other than "auto" short-circuits
// without a model call.
func (p *Planner) Plan(ctx context.Context, userText string, sess *chat.Session, mode string) (chat.Plan, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	switch mode {
	case "health", "metrics", "report", "daily_report":
		return chat.Plan{
			Action:    chat.Action(mode),
			Why:       "forced_by_mode:" + mode,
			NeedTools: true,
		}, nil
	}

	ctxFlags := map[string]bool{
		"has_last_health":  sess.LastHealth != nil,
		"has_last_metrics": sess.LastMetrics != nil,
		"has_last_report":  sess.LastReport != "",
	}
	flags, _ := json.Marshal(ctxFlags)

	query := fmt.Sprintf("User message: %s\nContext flags: %s\n", userText, flags)
	messages := []*schema.Message{
		schema.SystemMessage(routerSystemPrompt),
		schema.UserMessage(query),
	}

	response, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		log.Printf("[planner] model call failed, falling back to chat: %v", err)
		return fallbackPlan(), nil
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return fallbackPlan(), nil
	}

	payload, err := parsePlannerOutput(response.Content)
	if err != nil {
		log.Printf("[planner] output parse failed, falling back to chat: %v", err)
		return fallbackPlan(), nil
	}

	action := strings.ToLower(strings.TrimSpace(payload.Action))
	if !chat.ValidAction(action) {
		return fallbackPlan(), nil
	}

	needTools := payload.needTools(action)

	why := strings.TrimSpace(payload.Why)
	if why == "" {
		why = "n/a"
	}

	return chat.Plan{Action: chat.Action(action), Why: why, NeedTools: needTools}, nil
}

func fallbackPlan() chat.Plan {
	return chat.Plan{Action: chat.ActionChat, Why: "n/a", NeedTools: false}
}

// parsePlannerOutput decodes the model's JSON, tolerating prose around the
// object: when the full output is not valid JSON, the first balanced
// {...} chunk is tried instead.
func parsePlannerOutput(content string) (*plannerPayload, error) {
	trimmed := strings.TrimSpace(content)

	payload := &plannerPayload{}
	if err := json.Unmarshal([]byte(trimmed), payload); err == nil {
		return payload, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload = &plannerPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

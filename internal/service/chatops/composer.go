package chatops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dpetrov/infracopilot/backend/internal/model/chat"
	"github.com/dpetrov/infracopilot/backend/internal/service/ai"
)

// Serialized tool payloads are capped to bound request size.
const toolPayloadBudget = 12000

const chatSystemPrompt = "You are InfraCopilot Lite, a helpful SRE assistant.\n" +
	"Answer clearly and practically.\n" +
	"If the user asks for destructive actions, suggest safe read-only alternatives.\n" +
	"Use brief headings and bullet points when helpful."

const toolSystemPrompt = "You are InfraCopilot Lite, an SRE assistant.\n" +
	"Use TOOL_OUTPUTS to answer the user's question.\n" +
	"Be concise but helpful. Include:\n" +
	"- what you observed\n" +
	"- key values (cpu/mem/disk/uptime for health)\n" +
	"- warnings if any\n" +
	"- non-destructive next steps\n" +
	"Format with short headings and bullets.\n" +
	"Do NOT ask unnecessary clarification if TOOL_OUTPUTS already contains the needed info."

// compose produces the final answer. The chat action gets the bounded turn
// history; every other action gets the serialized tool payload, backfilled
// from the session cache when this turn did not fetch the needed snapshot.
func (s *Service) compose(ctx context.Context, action chat.Action, userText string, payload *chat.ToolPayload, sess *chat.Session) (string, error) {
	if action == chat.ActionChat {
		// The user turn was already appended; the history placeholder gets
		// everything before it.
		history := sess.History
		if len(history) > 0 {
			history = history[:len(history)-1]
		}

		text, err := s.generator.Generate(ctx, chatSystemPrompt, ai.HistoryMessages(history), userText)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrGeneration, err)
		}
		return text, nil
	}

	// Follow-up turns may reference data the planner did not re-fetch; reuse
	// the session's last snapshots. Staleness is accepted.
	if action == chat.ActionHealth && payload.Health == nil {
		payload.Health = sess.LastHealth
	}
	if action == chat.ActionMetrics && payload.Metrics == nil {
		payload.Metrics = sess.LastMetrics
	}
	if (action == chat.ActionReport || action == chat.ActionDailyReport) && payload.ReportMarkdown == "" {
		payload.ReportMarkdown = sess.LastReport
	}

	serialized, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(serialized) > toolPayloadBudget {
		serialized = serialized[:toolPayloadBudget]
	}

	query := fmt.Sprintf("USER_QUESTION:\n%s\n\nACTION:\n%s\n\nTOOL_OUTPUTS (JSON):\n%s\n", userText, action, serialized)

	text, err := s.generator.Generate(ctx, toolSystemPrompt, nil, query)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return text, nil
}

package chat

import (
	"github.com/dpetrov/infracopilot/backend/internal/model/health"
	"github.com/dpetrov/infracopilot/backend/internal/model/metrics"
)

// Action is the routing decision made for a single chat message.
type Action string

const (
	ActionChat        Action = "chat"
	ActionHealth      Action = "health"
	ActionMetrics     Action = "metrics"
	ActionReport      Action = "report"
	ActionDailyReport Action = "daily_report"
)

// ValidAction reports whether raw is one of the allowed routing actions.
func ValidAction(raw string) bool {
	switch Action(raw) {
	case ActionChat, ActionHealth, ActionMetrics, ActionReport, ActionDailyReport:
		return true
	default:
		return false
	}
}

// Plan is the planner's decision for one message. Produced once per chat
// call, never persisted.
type Plan struct {
	Action    Action `json:"action"`
	Why       string `json:"why"`
	NeedTools bool   `json:"need_tools"`
}

// ToolPayload bundles the tool results fetched for one turn. Fields stay nil
// (and absent from the serialized form) when the corresponding tool did not
// run and no cached value existed.
type ToolPayload struct {
	Action         Action            `json:"action"`
	Why            string            `json:"why"`
	Health         *health.Snapshot  `json:"health,omitempty"`
	Metrics        *metrics.Snapshot `json:"metrics,omitempty"`
	ReportMarkdown string            `json:"reportMarkdown,omitempty"`
}

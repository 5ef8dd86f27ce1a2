package chat

import (
	"time"

	"github.com/dpetrov/infracopilot/backend/internal/model/health"
	"github.com/dpetrov/infracopilot/backend/internal/model/metrics"
)

// Role identifies which side of the conversation produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one utterance in the bounded conversation history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Session captures per-conversation state: bounded history plus the most
// recent tool results, kept so follow-up questions can be answered without
// re-fetching.
type Session struct {
	ID           string
	LastActivity time.Time
	History      []Turn

	LastHealth  *health.Snapshot
	LastMetrics *metrics.Snapshot
	LastReport  string
}

package chatops

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/dpetrov/infracopilot/backend/internal/model/chat"
	"github.com/dpetrov/infracopilot/backend/internal/model/health"
	"github.com/dpetrov/infracopilot/backend/internal/model/metrics"
	"github.com/dpetrov/infracopilot/backend/internal/service/session"
)

var (
	// ErrToolExecution marks a failure while fetching tool data; the turn is
	// aborted with whatever session state was already mutated.
	ErrToolExecution = errors.New("tool execution failed")
	// ErrGeneration marks a failure while composing the model answer.
	ErrGeneration = errors.New("answer generation failed")
)

// HealthSource produces one aggregated health snapshot.
type HealthSource interface {
	Aggregate(ctx context.Context) health.Snapshot
}

// MetricsSource produces one metrics snapshot.
type MetricsSource interface {
	Snapshot(ctx context.Context) metrics.Snapshot
}

// ActionPlanner classifies a message into a routing decision.
type ActionPlanner interface {
	Plan(ctx context.Context, userText string, sess *chat.Session, mode string) (chat.Plan, error)
}

// Generator runs one model completion.
type Generator interface {
	Generate(ctx context.Context, system string, history []*schema.Message, query string) (string, error)
	ModelName() string
}

// Service is the conversational pipeline: session state, action planning,
// tool execution with cache fallback, and answer composition.
type Service struct {
	sessions   *session.Store
	planner    ActionPlanner
	generator  Generator
	healthSrc  HealthSource
	metricsSrc MetricsSource
}

// NewService wires the pipeline together.
func NewService(sessions *session.Store, planner ActionPlanner, generator Generator, healthSrc HealthSource, metricsSrc MetricsSource) *Service {
	return &Service{
		sessions:   sessions,
		planner:    planner,
		generator:  generator,
		healthSrc:  healthSrc,
		metricsSrc: metricsSrc,
	}
}

// ModelName returns the identifier of the model answers are generated with.
func (s *Service) ModelName() string {
	return s.generator.ModelName()
}

// Result is the assembled chat response, including the side-channel tool
// data the dashboard consumes.
type Result struct {
	SessionID      string
	ToolUsed       string
	Text           string
	UsedModel      string
	Health         *health.Snapshot
	Metrics        *metrics.Snapshot
	ReportMarkdown string
	HasReport      bool
}

// Respond runs one full chat turn: load session, plan, execute tools,
// compose the answer, append both turns to the bounded history.
func (s *Service) Respond(ctx context.Context, input, mode, sessionID string) (*Result, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	sess := s.sessions.GetOrCreate(sessionID)

	input = strings.TrimSpace(input)
	if input == "" {
		return &Result{
			SessionID: sessionID,
			ToolUsed:  "none",
			Text:      "Say something and I'll help.",
		}, nil
	}

	s.sessions.AppendTurn(sess, chat.RoleUser, input)

	plan, err := s.planner.Plan(ctx, input, sess, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	log.Printf("[chatops] session=%s action=%s need_tools=%t why=%q", sessionID, plan.Action, plan.NeedTools, plan.Why)

	payload, err := s.execute(ctx, plan, sess)
	if err != nil {
		return nil, err
	}

	text, err := s.compose(ctx, plan.Action, input, payload, sess)
	if err != nil {
		return nil, err
	}

	s.sessions.AppendTurn(sess, chat.RoleModel, text)

	return &Result{
		SessionID:      sessionID,
		ToolUsed:       string(plan.Action),
		Text:           text,
		UsedModel:      s.generator.ModelName(),
		Health:         payload.Health,
		Metrics:        payload.Metrics,
		ReportMarkdown: payload.ReportMarkdown,
		HasReport:      payload.ReportMarkdown != "",
	}, nil
}

package chatops

import (
	"context"
	"fmt"

	"github.com/dpetrov/infracopilot/backend/internal/model/chat"
)

// execute fetches the tool data the plan calls for, caching every successful
// fetch on the session. Session mutations before a failure are kept, there
// is no rollback.
func (s *Service) execute(ctx context.Context, plan chat.Plan, sess *chat.Session) (*chat.ToolPayload, error) {
	payload := &chat.ToolPayload{Action: plan.Action, Why: plan.Why}
	if !plan.NeedTools {
		return payload, nil
	}

	switch plan.Action {
	case chat.ActionHealth, chat.ActionReport, chat.ActionDailyReport:
		snap := s.healthSrc.Aggregate(ctx)
		sess.LastHealth = &snap
		payload.Health = &snap
	}

	switch plan.Action {
	case chat.ActionMetrics, chat.ActionReport, chat.ActionDailyReport:
		snap := s.metricsSrc.Snapshot(ctx)
		sess.LastMetrics = &snap
		payload.Metrics = &snap
	}

	switch plan.Action {
	case chat.ActionReport, chat.ActionDailyReport:
		// Prefer the snapshots fetched this turn, fall back to the session
		// cache for anything missing.
		healthIn := payload.Health
		if healthIn == nil {
			healthIn = sess.LastHealth
		}
		metricsIn := payload.Metrics
		if metricsIn == nil {
			metricsIn = sess.LastMetrics
		}

		md, err := s.GenerateReport(ctx, healthIn, metricsIn)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrToolExecution, err)
		}
		sess.LastReport = md
		payload.ReportMarkdown = md
	}

	return payload, nil
}

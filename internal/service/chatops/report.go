package chatops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dpetrov/infracopilot/backend/internal/model/health"
	"github.com/dpetrov/infracopilot/backend/internal/model/metrics"
)

const reportSystemPrompt = "You are InfraCopilot Lite, a virtual SRE assistant. " +
	"Summarize infra health + metrics in plain English. " +
	"Highlight risks and suggest NON-DESTRUCTIVE next actions only. " +
	"Format output as Markdown with headings, bullet points, and a short 'Next Actions' section."

// GenerateReport summarizes health and metrics into markdown. Missing inputs
// are fetched fresh before the model call.
func (s *Service) GenerateReport(ctx context.Context, healthIn *health.Snapshot, metricsIn *metrics.Snapshot) (string, error) {
	if healthIn == nil {
		snap := s.healthSrc.Aggregate(ctx)
		healthIn = &snap
	}
	if metricsIn == nil {
		snap := s.metricsSrc.Snapshot(ctx)
		metricsIn = &snap
	}

	query := fmt.Sprintf(`Generate today's hybrid infra health report.
LOCAL HEALTH:
%s

CLOUD HEALTH:
%s

CUSTOM ENDPOINTS:
%s

METRICS:
%s

Be concise, actionable, and include a short risk score (Low/Med/High).
`,
		indentJSON(healthIn.Local),
		indentJSON(healthIn.Cloud),
		indentJSON(healthIn.Custom),
		indentJSON(metricsIn),
	)

	md, err := s.generator.Generate(ctx, reportSystemPrompt, nil, query)
	if err != nil {
		return "", err
	}
	return md, nil
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

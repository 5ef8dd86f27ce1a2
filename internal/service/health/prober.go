package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dpetrov/infracopilot/backend/internal/model/endpoint"
	"github.com/dpetrov/infracopilot/backend/internal/model/health"
)

// Prober issues one bounded GET per configured endpoint. Probes run
// concurrently; a single unreachable endpoint cannot stall the set beyond
// its own timeout.
type Prober struct {
	endpoints endpoint.Store
	client    *http.Client
}

// NewProber creates a prober with a shared per-request timeout.
func NewProber(endpoints endpoint.Store, timeout time.Duration) *Prober {
	return &Prober{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
	}
}

// Collect probes every well-formed endpoint. Entries missing a name or URL
// are silently skipped. 2xx-3xx responses count as UP, everything else
// (including transport errors) as DOWN with one CUSTOM warning.
func (p *Prober) Collect(ctx context.Context) (health.CustomReport, error) {
	entries := p.endpoints.List()

	targets := make([]endpoint.Endpoint, 0, len(entries))
	for _, ep := range entries {
		if ep.Name == "" || ep.URL == "" {
			continue
		}
		targets = append(targets, ep)
	}

	results := make([]health.EndpointResult, len(targets))
	var wg sync.WaitGroup
	for i, ep := range targets {
		wg.Add(1)
		go func(i int, ep endpoint.Endpoint) {
			defer wg.Done()
			results[i] = p.probe(ctx, ep)
		}(i, ep)
	}
	wg.Wait()

	report := health.CustomReport{
		Configured: true,
		Results:    results,
		Warnings:   []string{},
	}
	for _, res := range results {
		if res.Status != "UP" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("CUSTOM: %s DOWN (%s)", res.Name, res.Error))
		}
	}
	return report, nil
}

func (p *Prober) probe(ctx context.Context, ep endpoint.Endpoint) health.EndpointResult {
	result := health.EndpointResult{Name: ep.Name, URL: ep.URL, Status: "DOWN"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	result.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	result.HTTPStatus = &status
	if status >= 200 && status < 400 {
		result.Status = "UP"
	} else {
		result.Error = fmt.Sprintf("Bad status %d", status)
	}
	return result
}

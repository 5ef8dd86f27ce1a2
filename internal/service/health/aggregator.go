package health

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dpetrov/infracopilot/backend/internal/model/health"
)

// Fixed check count backing the summary: three local gauges plus the cloud
// and custom sources.
const totalChecks = 5

// LocalSource reads the host gauges.
type LocalSource interface {
	Collect(ctx context.Context) (health.LocalReport, error)
}

// CloudSource reads the cloud resource inventory.
type CloudSource interface {
	Collect(ctx context.Context) (health.CloudReport, error)
}

// CustomSource probes the user-defined endpoints.
type CustomSource interface {
	Collect(ctx context.Context) (health.CustomReport, error)
}

// Aggregator fans out to the three sources concurrently and merges their
// warnings into one snapshot. A slow or failing source never blocks the
// other two; its failure degrades to a warning in its own sub-report.
type Aggregator struct {
	local  LocalSource
	cloud  CloudSource
	custom CustomSource
}

// NewAggregator wires the three collectors together.
func NewAggregator(local LocalSource, cloud CloudSource, custom CustomSource) *Aggregator {
	return &Aggregator{local: local, cloud: cloud, custom: custom}
}

// Aggregate produces one snapshot. It never fails: collector errors become
// warnings in the corresponding sub-report.
func (a *Aggregator) Aggregate(ctx context.Context) health.Snapshot {
	var (
		wg     sync.WaitGroup
		local  health.LocalReport
		cloud  health.CloudReport
		custom health.CustomReport
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		var err error
		if local, err = a.local.Collect(ctx); err != nil {
			log.Printf("[health] local collect failed: %v", err)
			local.Warnings = append(local.Warnings, fmt.Sprintf("LOCAL: collect failed - %v", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if cloud, err = a.cloud.Collect(ctx); err != nil {
			log.Printf("[health] cloud collect failed: %v", err)
			cloud.Status = "error"
			cloud.Warnings = append(cloud.Warnings, fmt.Sprintf("AZURE: collect failed - %v", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if custom, err = a.custom.Collect(ctx); err != nil {
			log.Printf("[health] endpoint probe failed: %v", err)
			custom.Warnings = append(custom.Warnings, fmt.Sprintf("CUSTOM: probe failed - %v", err))
		}
	}()
	wg.Wait()

	warnings := []string{}
	warnings = append(warnings, local.Warnings...)
	warnings = append(warnings, cloud.Warnings...)
	warnings = append(warnings, custom.Warnings...)

	healthy := totalChecks - len(warnings)
	if healthy < 0 {
		healthy = 0
	}

	return health.Snapshot{
		Timestamp: time.Now().UTC(),
		Summary: health.Summary{
			Total:    totalChecks,
			Healthy:  healthy,
			Warnings: len(warnings),
		},
		Warnings: warnings,
		Local:    local,
		Cloud:    cloud,
		Custom:   custom,
	}
}

package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetrov/infracopilot/backend/internal/config"
)

func TestLocalCollectorReadsGauges(t *testing.T) {
	collector := NewLocalCollector(config.LocalThresholds{CPUWarn: 100, MemWarn: 100, DiskWarn: 100})

	report, err := collector.Collect(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, report.CPUPercent, 0.0)
	assert.LessOrEqual(t, report.CPUPercent, 100.0)
	assert.Greater(t, report.MemoryPercent, 0.0)
	assert.Greater(t, report.DiskPercent, 0.0)
	// Thresholds above any real reading must not trip (>= comparison makes
	// exactly 100% a corner case we accept here).
	assert.Empty(t, report.Warnings)
}

func TestLocalCollectorWarnsOnLowThresholds(t *testing.T) {
	collector := NewLocalCollector(config.LocalThresholds{CPUWarn: 0, MemWarn: 0, DiskWarn: 0})

	report, err := collector.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Warnings, 3)
	assert.Contains(t, report.Warnings[0], "LOCAL: High CPU")
	assert.Contains(t, report.Warnings[1], "LOCAL: High Memory")
	assert.Contains(t, report.Warnings[2], "LOCAL: High Disk")
}

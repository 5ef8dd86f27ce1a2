package health

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/dpetrov/infracopilot/backend/internal/config"
	"github.com/dpetrov/infracopilot/backend/internal/model/health"
)

// LocalCollector reads host gauges and applies the static warning thresholds.
type LocalCollector struct {
	thresholds config.LocalThresholds
}

// NewLocalCollector creates a host gauge collector.
func NewLocalCollector(thresholds config.LocalThresholds) *LocalCollector {
	return &LocalCollector{thresholds: thresholds}
}

// Collect samples CPU, memory, disk and uptime. Individual sensor failures
// leave the gauge at zero; the caller treats the report as always available.
func (c *LocalCollector) Collect(ctx context.Context) (health.LocalReport, error) {
	report := health.LocalReport{Warnings: []string{}}

	cpuPercents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false)
	if err != nil {
		return report, fmt.Errorf("cpu read failed: %w", err)
	}
	if len(cpuPercents) > 0 {
		report.CPUPercent = round2(cpuPercents[0])
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return report, fmt.Errorf("memory read failed: %w", err)
	}
	report.MemoryPercent = round2(vm.UsedPercent)

	usage, err := disk.UsageWithContext(ctx, rootPath())
	if err != nil {
		return report, fmt.Errorf("disk read failed: %w", err)
	}
	report.DiskPercent = round2(usage.UsedPercent)

	if boot, err := host.BootTimeWithContext(ctx); err == nil {
		report.UptimeSeconds = time.Now().UTC().Unix() - int64(boot)
	}

	if report.CPUPercent >= c.thresholds.CPUWarn {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("LOCAL: High CPU %.1f%% (>= %.0f%%)", report.CPUPercent, c.thresholds.CPUWarn))
	}
	if report.MemoryPercent >= c.thresholds.MemWarn {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("LOCAL: High Memory %.1f%% (>= %.0f%%)", report.MemoryPercent, c.thresholds.MemWarn))
	}
	if report.DiskPercent >= c.thresholds.DiskWarn {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("LOCAL: High Disk %.1f%% (>= %.0f%%)", report.DiskPercent, c.thresholds.DiskWarn))
	}

	return report, nil
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		drive := os.Getenv("SYSTEMDRIVE")
		if drive == "" {
			drive = "C:"
		}
		return drive + `\`
	}
	return "/"
}

func round2(val float64) float64 {
	return math.Round(val*100) / 100
}

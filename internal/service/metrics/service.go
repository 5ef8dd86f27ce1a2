package metrics

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/dpetrov/infracopilot/backend/internal/model/metrics"
)

const seriesPoints = 24

// Service produces 24h dashboard trends. Only the cpu/memory bases come from
// live readings; the hourly trend shape around them is synthetic.
type Service struct{}

// NewService creates the metrics service.
func NewService() *Service {
	return &Service{}
}

// Snapshot builds the four series with one point per hour, newest last.
func (s *Service) Snapshot(ctx context.Context) metrics.Snapshot {
	baseCPU := 50.0
	if percents, err := cpu.PercentWithContext(ctx, 100*time.Millisecond, false); err == nil && len(percents) > 0 {
		baseCPU = percents[0]
	}

	baseMem := 50.0
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		baseMem = vm.UsedPercent
	}

	now := time.Now().UTC()
	return metrics.Snapshot{
		Timestamp:      now,
		Range:          "24h",
		SyntheticTrend: true,
		CPU:            series(now, baseCPU, 18),
		Memory:         series(now, baseMem, 14),
		Disk:           series(now, 55, 10),
		NetIO:          series(now, 35, 22),
	}
}

func series(now time.Time, base, jitter float64) []metrics.Point {
	out := make([]metrics.Point, 0, seriesPoints)
	for i := 0; i < seriesPoints; i++ {
		t := now.Add(-time.Duration(seriesPoints-1-i) * time.Hour)
		v := base + (rand.Float64()-0.5)*jitter
		v = math.Max(0, math.Min(100, v))
		out = append(out, metrics.Point{T: t, V: math.Round(v*100) / 100})
	}
	return out
}

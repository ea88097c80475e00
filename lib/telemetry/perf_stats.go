package telemetry

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("go.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var processRSSGauge, _ = meter.Int64Gauge("process_rss_mb")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var liveObjectsGauge, _ = meter.Int64Gauge("live_objects")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// PerfStats is one sample of the process' resource usage.
type PerfStats struct {
	CPUPercent  float64
	RSSBytes    uint64
	AllocBytes  uint64
	LiveObjects int64
	Goroutines  int
}

// SamplePerfStats reads the current resource usage. cpu usage is measured
// since the previous call (the first call measures since boot).
func SamplePerfStats(ctx context.Context) (PerfStats, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := PerfStats{
		AllocBytes:  memStats.Alloc,
		LiveObjects: int64(memStats.Mallocs) - int64(memStats.Frees),
		Goroutines:  runtime.NumGoroutine(),
	}

	usage, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return stats, err
	}
	if len(usage) > 0 {
		stats.CPUPercent = usage[0]
	}

	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return stats, err
	}
	mem, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return stats, err
	}
	stats.RSSBytes = mem.RSS
	return stats, nil
}

// InstrumentPerfStats records resource usage gauges every interval until ctx
// is done.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats, err := SamplePerfStats(ctx)
				if err != nil {
					slog.Warn("failed to sample perf stats", "err", err)
				}
				cpuGauge.Record(ctx, stats.CPUPercent)
				processRSSGauge.Record(ctx, int64(stats.RSSBytes/1_000_000))
				memoryGauge.Record(ctx, int64(stats.AllocBytes/1_000_000))
				liveObjectsGauge.Record(ctx, stats.LiveObjects)
				goroutineGauge.Record(ctx, int64(stats.Goroutines))
			case <-ctx.Done():
				return
			}
		}
	}()
}

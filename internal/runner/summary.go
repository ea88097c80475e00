package runner

import (
	"time"

	"eduparser/internal/scraper"
)

type HealthStatus string

const (
	Healthy   HealthStatus = "healthy"
	Warning   HealthStatus = "warning"
	Unhealthy HealthStatus = "unhealthy"
)

// Summary is the aggregate outcome of a run.
type Summary struct {
	RunID              string
	Total              int
	Succeeded          int
	Failed             int
	SuccessRate        float64
	Threshold          float64
	ThresholdUnhealthy float64
	Status             HealthStatus
	TotalApplicants    int
	StartedAt          time.Time
	Duration           time.Duration
}

// Classify maps a success rate onto a verdict. rates at or above the healthy
// threshold are healthy, rates below the unhealthy threshold are unhealthy.
func Classify(rate float64, cfg Config) HealthStatus {
	switch {
	case rate >= cfg.SuccessThresholdHealthy:
		return Healthy
	case rate < cfg.SuccessThresholdUnhealthy:
		return Unhealthy
	}
	return Warning
}

// Summarize aggregates results. a run without tasks is unhealthy.
func Summarize(results []scraper.TaskResult, cfg Config) Summary {
	summary := Summary{
		Total:              len(results),
		Threshold:          cfg.SuccessThresholdHealthy,
		ThresholdUnhealthy: cfg.SuccessThresholdUnhealthy,
	}
	for _, res := range results {
		if res.Status == scraper.StatusSuccess {
			summary.Succeeded++
			if res.Count != nil {
				summary.TotalApplicants += *res.Count
			}
			continue
		}
		summary.Failed++
	}

	if summary.Total == 0 {
		summary.Status = Unhealthy
		return summary
	}
	summary.SuccessRate = float64(summary.Succeeded) / float64(summary.Total)
	summary.Status = Classify(summary.SuccessRate, cfg)
	return summary
}

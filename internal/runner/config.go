package runner

import (
	"errors"
	"fmt"
	"time"

	"eduparser/internal/scraper"
)

const (
	DefaultMaxWorkers                = 5
	DefaultPerTaskTimeoutSeconds     = 30
	DefaultFetchTimeoutSeconds       = 20
	DefaultSuccessThresholdHealthy   = 0.7
	DefaultSuccessThresholdUnhealthy = 0.3
)

// Config tunes a run. zero values fall back to the defaults above, so an
// explicit threshold of 0 cannot be configured.
type Config struct {
	MaxWorkers                int          `json:"max_workers"`
	PerTaskTimeoutSeconds     float64      `json:"per_task_timeout_seconds"`
	FetchTimeoutSeconds       float64      `json:"fetch_timeout_seconds"`
	SuccessThresholdHealthy   float64      `json:"success_threshold_healthy"`
	SuccessThresholdUnhealthy float64      `json:"success_threshold_unhealthy"`
	Mode                      scraper.Mode `json:"mode"`
}

func (c Config) WithDefaults() Config {
	if c.MaxWorkers == 0 {
		c.MaxWorkers = DefaultMaxWorkers
	}
	if c.PerTaskTimeoutSeconds == 0 {
		c.PerTaskTimeoutSeconds = DefaultPerTaskTimeoutSeconds
	}
	if c.FetchTimeoutSeconds == 0 {
		c.FetchTimeoutSeconds = DefaultFetchTimeoutSeconds
	}
	if c.SuccessThresholdHealthy == 0 {
		c.SuccessThresholdHealthy = DefaultSuccessThresholdHealthy
	}
	if c.SuccessThresholdUnhealthy == 0 {
		c.SuccessThresholdUnhealthy = DefaultSuccessThresholdUnhealthy
	}
	if c.Mode == "" {
		c.Mode = scraper.ModeEnabled
	}
	return c
}

// Validate checks a config that already had its defaults applied.
func (c Config) Validate() error {
	var errs []error
	if c.MaxWorkers < 1 {
		errs = append(errs, fmt.Errorf("max_workers must be at least 1, got %d", c.MaxWorkers))
	}
	if c.PerTaskTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("per_task_timeout_seconds must be positive, got %v", c.PerTaskTimeoutSeconds))
	}
	if c.FetchTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout_seconds must be positive, got %v", c.FetchTimeoutSeconds))
	}
	for name, v := range map[string]float64{
		"success_threshold_healthy":   c.SuccessThresholdHealthy,
		"success_threshold_unhealthy": c.SuccessThresholdUnhealthy,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}
	if c.SuccessThresholdUnhealthy > c.SuccessThresholdHealthy {
		errs = append(errs, fmt.Errorf(
			"success_threshold_unhealthy (%v) is above success_threshold_healthy (%v)",
			c.SuccessThresholdUnhealthy, c.SuccessThresholdHealthy,
		))
	}
	if c.Mode != scraper.ModeEnabled && c.Mode != scraper.ModeAll {
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	return errors.Join(errs...)
}

func (c Config) perTaskTimeout() time.Duration {
	return time.Duration(c.PerTaskTimeoutSeconds * float64(time.Second))
}

func (c Config) fetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds * float64(time.Second))
}

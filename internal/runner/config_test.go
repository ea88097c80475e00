package runner

import (
	"testing"
	"time"

	"eduparser/internal/scraper"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	require.Equal(t, Config{
		MaxWorkers:                5,
		PerTaskTimeoutSeconds:     30,
		FetchTimeoutSeconds:       20,
		SuccessThresholdHealthy:   0.7,
		SuccessThresholdUnhealthy: 0.3,
		Mode:                      scraper.ModeEnabled,
	}, cfg)
	require.NoError(t, cfg.Validate())
	require.Equal(t, 30*time.Second, cfg.perTaskTimeout())
	require.Equal(t, 20*time.Second, cfg.fetchTimeout())

	custom := Config{MaxWorkers: 2, PerTaskTimeoutSeconds: 0.5, Mode: scraper.ModeAll}.WithDefaults()
	require.Equal(t, 2, custom.MaxWorkers)
	require.Equal(t, 500*time.Millisecond, custom.perTaskTimeout())
	require.Equal(t, scraper.ModeAll, custom.Mode)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{name: "negative workers", cfg: Config{MaxWorkers: -1}},
		{name: "negative timeout", cfg: Config{PerTaskTimeoutSeconds: -1}},
		{name: "threshold above one", cfg: Config{SuccessThresholdHealthy: 1.5}},
		{name: "inverted thresholds", cfg: Config{SuccessThresholdHealthy: 0.4, SuccessThresholdUnhealthy: 0.6}},
		{name: "unknown mode", cfg: Config{Mode: "sometimes"}},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			require.Error(t, test.cfg.WithDefaults().Validate())
		})
	}
}

func TestClassify(t *testing.T) {
	cfg := Config{}.WithDefaults()
	require.Equal(t, Healthy, Classify(1, cfg))
	require.Equal(t, Healthy, Classify(0.7, cfg))
	require.Equal(t, Warning, Classify(0.69, cfg))
	require.Equal(t, Warning, Classify(0.3, cfg))
	require.Equal(t, Unhealthy, Classify(0.29, cfg))
	require.Equal(t, Unhealthy, Classify(0, cfg))
}

func TestSummarize(t *testing.T) {
	cfg := Config{}.WithDefaults()
	at := time.Date(2025, 7, 22, 0, 0, 0, 0, time.UTC)
	desc := scraper.Descriptor{Definition: scraper.Definition{ID: "x"}}

	summary := Summarize([]scraper.TaskResult{
		scraper.Succeeded(desc, 10, at, time.Second),
		scraper.Succeeded(desc, 5, at, time.Second),
		scraper.Failed(desc, scraper.ErrTimeout, at, time.Second),
	}, cfg)
	require.Equal(t, 3, summary.Total)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 15, summary.TotalApplicants)
	require.Equal(t, Warning, summary.Status)
	require.Equal(t, 0.7, summary.Threshold)

	empty := Summarize(nil, cfg)
	require.Equal(t, Unhealthy, empty.Status)
	require.Zero(t, empty.SuccessRate)
}

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"eduparser/internal/alert"
	"eduparser/internal/fetch"
	"eduparser/internal/runner"
	"eduparser/internal/scraper"
	"eduparser/internal/store"
	"eduparser/lib/configutil"
)

const DefaultSchedule = "0 9 * * *"

type Config struct {
	Database store.Config      `json:"database"`
	Runner   runner.Config     `json:"runner"`
	Fetch    fetch.Config      `json:"fetch"`
	Alert    alert.EmailConfig `json:"alert"`
	// Schedule is the cron expression of daemon runs, in Moscow time.
	Schedule string `json:"schedule"`
	Debug    bool   `json:"debug"`
}

func defaultConfig() Config {
	return Config{
		Database: store.Config{File: "data/eduparser.db"},
		Runner:   runner.Config{}.WithDefaults(),
		Schedule: DefaultSchedule,
	}
}

// LoadConfig reads path (and its .local override) over the defaults, then
// applies the SCRAPER_MODE and SUCCESS_THRESHOLD environment overrides. a
// missing file is not an error.
func LoadConfig(path string, getenv func(string) string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, defaultConfig())
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	err = applyEnv(&cfg, getenv)
	if err != nil {
		return Config{}, err
	}
	cfg.Runner = cfg.Runner.WithDefaults()
	err = cfg.Runner.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid runner config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if mode := getenv("SCRAPER_MODE"); mode != "" {
		switch scraper.Mode(mode) {
		case scraper.ModeEnabled, scraper.ModeAll:
			cfg.Runner.Mode = scraper.Mode(mode)
		default:
			return fmt.Errorf("SCRAPER_MODE must be %q or %q, got %q", scraper.ModeEnabled, scraper.ModeAll, mode)
		}
	}
	if threshold := getenv("SUCCESS_THRESHOLD"); threshold != "" {
		value, err := strconv.ParseFloat(threshold, 64)
		if err != nil {
			return fmt.Errorf("SUCCESS_THRESHOLD: %w", err)
		}
		cfg.Runner.SuccessThresholdHealthy = value
	}
	return nil
}

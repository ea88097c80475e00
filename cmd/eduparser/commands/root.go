package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"eduparser/lib/telemetry"

	"github.com/spf13/cobra"
)

// errUnhealthy makes the process exit non-zero without printing anything
// beyond the run summary.
var errUnhealthy = errors.New("run is unhealthy")

var configPath string

// loaded is the configuration of the current invocation, set before any
// subcommand runs.
var loaded Config

var rootCmd = &cobra.Command{
	Use:           "eduparser",
	Short:         "eduparser collects applicant counts from university admission pages.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath, os.Getenv)
		if err != nil {
			return err
		}
		loaded = cfg
		telemetry.InitSlog(cfg.Debug)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "The configuration file, <name>.local.<ext> is merged on top of it.")
}

// ExecuteContext runs the command line and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, errUnhealthy) {
		return 1
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

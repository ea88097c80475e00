package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eduparser/internal/components/chrono"
	otelutil "eduparser/lib/telemetry"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Runs the enabled tasks on the configured schedule until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, loaded)
		if err != nil {
			return err
		}
		defer a.Close()

		otelutil.InstrumentPerfStats(ctx, time.Minute)

		cron := chrono.NewStandardCron(a.clock, a.tel)
		err = cron.Cron(a.cfg.Schedule, func() {
			a.scheduledRun(ctx)
		})
		if err != nil {
			cron.Stop()
			return fmt.Errorf("invalid schedule %q: %w", a.cfg.Schedule, err)
		}
		slog.Info("daemon started", "schedule", a.cfg.Schedule, "location", a.clock.Location())

		<-ctx.Done()
		slog.Info("shutting down, waiting for the current run")
		cron.Stop()
		return nil
	},
}

func (a *app) scheduledRun(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	summary, _, err := a.run(ctx, a.cfg.Runner, true)
	if err != nil && !errors.Is(err, errSaveFailed) {
		slog.Error("scheduled run failed", "err", err)
		return
	}
	if err != nil {
		slog.Error("scheduled run not saved", "run_id", summary.RunID, "err", err)
	}
	slog.Info(
		"scheduled run finished",
		"run_id", summary.RunID,
		"status", summary.Status,
		"succeeded", summary.Succeeded,
		"total", summary.Total,
		"applicants", summary.TotalApplicants,
	)
}

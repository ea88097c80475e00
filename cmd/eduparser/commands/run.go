package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eduparser/internal/fetch"
	"eduparser/internal/runner"
	"eduparser/internal/scraper"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// maxPrintedErrors bounds the failures listed after a run.
const maxPrintedErrors = 5

// errSaveFailed wraps a run that finished but whose results were not saved.
var errSaveFailed = errors.New("failed to save results")

var (
	runAll    bool
	runDryRun bool
)

func init() {
	runCmd.Flags().BoolVar(&runAll, "all", false, "Run every catalog task, enabled or not.")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Do not save the results.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--all] [--dry-run]",
	Short: "Runs the enabled tasks once, saves and prints their results.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), loaded)
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := a.cfg.Runner
		if runAll {
			cfg.Mode = scraper.ModeAll
		}
		summary, results, err := a.run(cmd.Context(), cfg, !runDryRun)
		if err != nil && !errors.Is(err, errSaveFailed) {
			return err
		}

		printResults(results)
		printSummary(summary, results)
		if err != nil {
			return err
		}
		if summary.Status == runner.Unhealthy {
			return errUnhealthy
		}
		return nil
	},
}

// run discovers, runs and alerts. when only the save fails the summary and
// results are returned along with an error wrapping errSaveFailed.
func (a *app) run(ctx context.Context, cfg runner.Config, save bool) (runner.Summary, []scraper.TaskResult, error) {
	descriptors, err := a.registry.Discover(ctx, a.store, cfg.Mode)
	if err != nil {
		return runner.Summary{}, nil, err
	}
	slog.Info("discovered tasks", "mode", cfg.Mode, "count", len(descriptors))

	var sink runner.ResultSink
	if save {
		sink = a.store
	}
	r := runner.New(fetch.New(a.cfg.Fetch, a.tel), sink, a.clock, a.tel)
	summary, results, err := r.Run(ctx, descriptors, cfg)
	// results are only nil when the run never started.
	if results == nil && err != nil {
		return summary, results, err
	}
	var saveErr error
	if err != nil {
		saveErr = fmt.Errorf("%w: %w", errSaveFailed, err)
	}

	if a.notifier != nil {
		err = a.notifier.Notify(ctx, summary, results)
		if err != nil {
			slog.Error("failed to send alert", "err", err)
		}
	}
	return summary, results, saveErr
}

func printResults(results []scraper.TaskResult) {
	t := newTable()
	t.AppendHeader(table.Row{"Task", "University", "Status", "Count", "Duration"})
	for _, res := range results {
		count := "-"
		if res.Count != nil {
			count = fmt.Sprint(*res.Count)
		}
		t.AppendRow(table.Row{
			res.TaskID,
			res.University,
			res.Status,
			count,
			res.Duration.Round(time.Millisecond),
		})
	}
	t.Render()
}

func printSummary(summary runner.Summary, results []scraper.TaskResult) {
	fmt.Printf(
		"\n%s: %d/%d tasks succeeded (%.0f%%, healthy at %.0f%%), %d applicants in %s\n",
		summary.Status,
		summary.Succeeded,
		summary.Total,
		summary.SuccessRate*100,
		summary.Threshold*100,
		summary.TotalApplicants,
		summary.Duration.Round(time.Millisecond),
	)

	printed := 0
	for _, res := range results {
		if res.Status != scraper.StatusError {
			continue
		}
		if printed == maxPrintedErrors {
			fmt.Printf("  ... and %d more\n", summary.Failed-printed)
			break
		}
		fmt.Printf("  %s: %s\n", res.TaskID, res.Error)
		printed++
	}
}

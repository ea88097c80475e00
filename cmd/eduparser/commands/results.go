package commands

import (
	"fmt"
	"time"

	"eduparser/internal/components/chrono"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var resultsDate string

func init() {
	resultsCmd.Flags().StringVar(&resultsDate, "date", "", "The day to list, YYYY-MM-DD in Moscow time. today by default.")
	rootCmd.AddCommand(resultsCmd)
}

var resultsCmd = &cobra.Command{
	Use:   "results [--date YYYY-MM-DD]",
	Short: "Prints the results stored for a day.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), loaded)
		if err != nil {
			return err
		}
		defer a.Close()

		day := resultsDate
		if day == "" {
			day = chrono.Day(a.clock, a.clock.Now())
		}
		_, err = time.Parse(time.DateOnly, day)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}

		stored, err := a.store.ResultsOn(cmd.Context(), day)
		if err != nil {
			return err
		}
		if len(stored) == 0 {
			fmt.Printf("no results stored for %s\n", day)
			return nil
		}

		total := 0
		t := newTable()
		t.AppendHeader(table.Row{"Task", "Name", "Count", "Error", "Saved at"})
		for _, res := range stored {
			count := "-"
			if res.Count != nil {
				count = fmt.Sprint(*res.Count)
				total += *res.Count
			}
			t.AppendRow(table.Row{
				res.TaskID,
				res.Name,
				count,
				res.Error,
				res.CreatedAt.In(a.clock.Location()).Format(time.DateTime),
			})
		}
		t.AppendFooter(table.Row{"", day, total, "", ""})
		t.Render()
		return nil
	},
}

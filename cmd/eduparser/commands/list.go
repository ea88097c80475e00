package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the catalog with the enabled flags stored in the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), loaded)
		if err != nil {
			return err
		}
		defer a.Close()

		enabled, err := a.store.LoadEnabledIDs(cmd.Context())
		if err != nil {
			return err
		}
		report, err := a.registry.Inspect(cmd.Context(), a.store)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name", "Strategy", "Enabled"})
		for _, def := range a.registry.Definitions() {
			_, on := enabled[def.ID]
			t.AppendRow(table.Row{def.ID, def.Name, def.Spec.Strategy, on})
		}
		t.AppendFooter(table.Row{"", "", "Enabled", fmt.Sprintf("%d/%d", report.Matched, report.Catalog)})
		t.Render()

		if len(report.Unknown) > 0 {
			fmt.Printf("\nenabled in the database but not in the catalog: %v\n", report.Unknown)
		}
		if report.Matched == 0 {
			fmt.Println("\nno task is enabled, run `eduparser sync` to seed the database")
		}
		return nil
	},
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Seeds the database with the catalog. new tasks are enabled, existing flags are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), loaded)
		if err != nil {
			return err
		}
		defer a.Close()

		defs := a.registry.Definitions()
		added, err := a.store.SyncCatalog(cmd.Context(), defs)
		if err != nil {
			return err
		}
		fmt.Printf("synced %d tasks, %d new\n", len(defs), added)
		return nil
	},
}

func setEnabledCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), loaded)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.store.SetEnabled(cmd.Context(), enabled, args...)
		},
	}
}

var enableCmd = setEnabledCmd("enable <id>...", "Enables the given tasks.", true)
var disableCmd = setEnabledCmd("disable <id>...", "Disables the given tasks.", false)

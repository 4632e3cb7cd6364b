package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrapup",
		Short: "Year-end library reading wrap-up builder",
		Long: `Wrapup harvests the year's checkouts from your library account,
annotates them with ratings from your reading-log export, and computes
the wrap-up statistics.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newReconcileCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newRunCmd())

	return cmd
}

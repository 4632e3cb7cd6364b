package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/libwrapup/wrapup/internal/config"
	"github.com/libwrapup/wrapup/internal/harvest"
	"github.com/libwrapup/wrapup/internal/report"
)

func newHarvestCmd() *cobra.Command {
	var (
		year     int
		username string
		output   string
		headless bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest the year's checkouts from the library account",
		Long: `Walks the library account's recently-returned listing page by page,
collecting every item checked out in the target year. Harvesting stops at
the first item from the prior year, when the listing runs out, or when a
page yields nothing to extract.

Credentials are read from WRAPUP_USERNAME and WRAPUP_PASSWORD (a .env file
in the working directory is honored).`,
		Example: `  # Harvest this year's checkouts
  wrapup harvest

  # A specific year, into a named file
  wrapup harvest --year 2025 --output books_2025.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if year != 0 {
				cfg.TargetYear = year
			}
			if username != "" {
				cfg.Username = username
			}
			if timeout != 0 {
				cfg.SessionTimeout = timeout
			}
			cfg.Headless = headless

			if err := cfg.Validate(); err != nil {
				return err
			}

			result, err := runHarvest(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if err := report.SaveItems(output, result.Items); err != nil {
				return err
			}

			fmt.Printf("Collected %d items from %d page(s), stop reason: %s\n",
				len(result.Items), result.Cursor.PageIndex, result.Cursor.Stop)
			fmt.Printf("Saved to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Target year (default: current year)")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Library account username")
	cmd.Flags().StringVarP(&output, "output", "o", "library_books.json", "Output file for harvested items")
	cmd.Flags().BoolVar(&headless, "headless", true, "Run the browser headless")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Wall-clock budget for the whole harvest")

	return cmd
}

// runHarvest owns the browser session for exactly one run and releases it on
// every exit path.
func runHarvest(parent context.Context, cfg config.Config) (harvest.Result, error) {
	ctx, cancel := context.WithTimeout(parent, cfg.SessionTimeout)
	defer cancel()

	session, err := harvest.NewSession(ctx, cfg)
	if err != nil {
		return harvest.Result{}, fmt.Errorf("failed to start browser session: %w", err)
	}
	defer session.Close()

	if err := session.Login(); err != nil {
		return harvest.Result{}, fmt.Errorf("login failed: %w", err)
	}
	if err := session.OpenListing(); err != nil {
		return harvest.Result{}, fmt.Errorf("failed to open listing: %w", err)
	}

	slog.Info("starting harvest", "year", cfg.TargetYear)
	controller := harvest.NewController(session, cfg.TargetYear)
	return controller.Run(ctx), nil
}

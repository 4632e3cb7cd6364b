package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/libwrapup/wrapup/internal/activity"
	"github.com/libwrapup/wrapup/internal/config"
	"github.com/libwrapup/wrapup/internal/readinglog"
	"github.com/libwrapup/wrapup/internal/report"
)

func newRunCmd() *cobra.Command {
	var (
		year           int
		logPath        string
		activitiesPath string
		threshold      float64
		csvPath        string
		outputDir      string
		headless       bool
		timeout        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Harvest, reconcile, and summarize in one pass",
		Long: `The end-to-end pipeline: harvest the year's checkouts from the
library account, annotate them with reading-log ratings, write the
annotated table and run report, and print the year's aggregates.`,
		Example: `  wrapup run --log goodreads_library_export.csv --year 2025`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if year != 0 {
				cfg.TargetYear = year
			}
			if timeout != 0 {
				cfg.SessionTimeout = timeout
			}
			cfg.Headless = headless

			if err := cfg.Validate(); err != nil {
				return err
			}

			harvested, err := runHarvest(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Printf("Collected %d items from %d page(s), stop reason: %s\n",
				len(harvested.Items), harvested.Cursor.PageIndex, harvested.Cursor.Stop)

			result, err := reconcileItems(harvested.Items, logPath, cfg.TargetYear, threshold)
			if err != nil {
				return err
			}

			if err := report.WriteCSV(csvPath, result.Rows); err != nil {
				return err
			}
			rep := report.NewRunReport(report.RunConfig{
				TargetYear:  cfg.TargetYear,
				Threshold:   effectiveThreshold(threshold),
				HarvestStop: harvested.Cursor.Stop.String(),
				PagesSeen:   harvested.Cursor.PageIndex,
			}, result)
			yamlPath, err := report.SaveToYAML(outputDir, rep)
			if err != nil {
				return err
			}

			printDiagnostic(result)
			fmt.Printf("Annotated table: %s\nRun report: %s\n", csvPath, yamlPath)

			entries, err := readinglog.NewLoader(logPath).Load()
			if err != nil {
				return err
			}
			printBookStats(readinglog.ComputeStats(readinglog.FilterYear(entries, cfg.TargetYear)), cfg.TargetYear)

			if activitiesPath != "" {
				workouts, err := activity.Load(activitiesPath)
				if err != nil {
					return err
				}
				printActivityStats(activity.ComputeStats(activity.FilterYear(workouts, cfg.TargetYear)), cfg.TargetYear)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Target year (default: current year)")
	cmd.Flags().StringVarP(&logPath, "log", "l", "", "Reading-log export (.csv or .parquet)")
	cmd.Flags().StringVarP(&activitiesPath, "activities", "a", "", "Activity export (.csv)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Fuzzy-match similarity threshold (default 0.9)")
	cmd.Flags().StringVar(&csvPath, "csv", "library_books_rated.csv", "Path for the annotated CSV")
	cmd.Flags().StringVar(&outputDir, "output-dir", "reports", "Directory for the YAML run report")
	cmd.Flags().BoolVar(&headless, "headless", true, "Run the browser headless")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Wall-clock budget for the harvest")
	_ = cmd.MarkFlagRequired("log")

	return cmd
}

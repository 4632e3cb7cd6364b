package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/libwrapup/wrapup/internal/harvest"
	"github.com/libwrapup/wrapup/internal/readinglog"
	"github.com/libwrapup/wrapup/internal/reconcile"
	"github.com/libwrapup/wrapup/internal/report"
)

func newReconcileCmd() *cobra.Command {
	var (
		booksPath string
		logPath   string
		year      int
		threshold float64
		csvPath   string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Annotate harvested items with reading-log ratings",
		Long: `Matches harvested library items against a reading-log export
(CSV or Parquet) by normalized title and writes the annotated table plus a
YAML run report with the match-rate diagnostic.

Exact key matches resolve first; remaining items get one conservative
fuzzy pass. Items with no confident match are marked NR.`,
		Example: `  wrapup reconcile --books library_books.json --log goodreads_library_export.csv --year 2025`,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := report.LoadItems(booksPath)
			if err != nil {
				return err
			}

			result, err := reconcileItems(items, logPath, year, threshold)
			if err != nil {
				return err
			}

			if err := report.WriteCSV(csvPath, result.Rows); err != nil {
				return err
			}

			rep := report.NewRunReport(report.RunConfig{
				TargetYear: year,
				Threshold:  effectiveThreshold(threshold),
			}, result)
			yamlPath, err := report.SaveToYAML(outputDir, rep)
			if err != nil {
				return err
			}

			printDiagnostic(result)
			fmt.Printf("Annotated table: %s\nRun report: %s\n", csvPath, yamlPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&booksPath, "books", "b", "library_books.json", "Harvested items file")
	cmd.Flags().StringVarP(&logPath, "log", "l", "", "Reading-log export (.csv or .parquet)")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Reading-log year filter (0 = no filter)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Fuzzy-match similarity threshold (default 0.9)")
	cmd.Flags().StringVar(&csvPath, "csv", "library_books_rated.csv", "Path for the annotated CSV")
	cmd.Flags().StringVar(&outputDir, "output-dir", "reports", "Directory for the YAML run report")
	_ = cmd.MarkFlagRequired("log")

	return cmd
}

// reconcileItems loads the reading log, applies the year filter, and runs
// the matcher.
func reconcileItems(items []harvest.Item, logPath string, year int, threshold float64) (reconcile.Result, error) {
	entries, err := readinglog.NewLoader(logPath).Load()
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("failed to load reading log: %w", err)
	}
	if year != 0 {
		entries = readinglog.FilterYear(entries, year)
	}
	slog.Info("reading log loaded", "entries", len(entries), "year", year)

	rows := make([]reconcile.LogRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, reconcile.LogRow{Title: e.Title, Rating: e.MyRating})
	}

	matcher := reconcile.Matcher{Threshold: threshold}
	return matcher.Reconcile(items, rows), nil
}

func effectiveThreshold(threshold float64) float64 {
	if threshold == 0 {
		return reconcile.DefaultThreshold
	}
	return threshold
}

// printDiagnostic reports match quality for operator visibility.
func printDiagnostic(res reconcile.Result) {
	fmt.Printf("Ratings matched: %d/%d\n", res.Matched, res.Total)
	if len(res.Unmatched) == 0 {
		return
	}
	sample := res.Unmatched
	if len(sample) > 10 {
		sample = sample[:10]
	}
	fmt.Println("Unmatched titles:")
	for _, title := range sample {
		fmt.Printf("  - %s\n", title)
	}
	if len(res.Unmatched) > len(sample) {
		fmt.Printf("  ... and %d more\n", len(res.Unmatched)-len(sample))
	}
}

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/libwrapup/wrapup/internal/activity"
	"github.com/libwrapup/wrapup/internal/readinglog"
)

func newStatsCmd() *cobra.Command {
	var (
		logPath        string
		activitiesPath string
		year           int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the year's reading and activity aggregates",
		Example: `  wrapup stats --log goodreads_library_export.csv --year 2025

  # Include workout stats
  wrapup stats --log export.csv --activities activities.csv --year 2025`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = time.Now().Year()
			}

			if logPath != "" {
				entries, err := readinglog.NewLoader(logPath).Load()
				if err != nil {
					return err
				}
				printBookStats(readinglog.ComputeStats(readinglog.FilterYear(entries, year)), year)
			}

			if activitiesPath != "" {
				entries, err := activity.Load(activitiesPath)
				if err != nil {
					return err
				}
				printActivityStats(activity.ComputeStats(activity.FilterYear(entries, year)), year)
			}

			if logPath == "" && activitiesPath == "" {
				return fmt.Errorf("nothing to do: pass --log and/or --activities")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&logPath, "log", "l", "", "Reading-log export (.csv or .parquet)")
	cmd.Flags().StringVarP(&activitiesPath, "activities", "a", "", "Activity export (.csv)")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Year to aggregate (default: current year)")

	return cmd
}

func printBookStats(stats readinglog.Stats, year int) {
	fmt.Printf("\nREADING %d\n", year)
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Books read: %d\n", stats.BookCount)
	fmt.Printf("Average rating: %.2f\n", stats.AvgRating)
	fmt.Printf("Total pages: %d\n", stats.TotalPages)
	if stats.LongestTitle != "" {
		fmt.Printf("Longest book: %s (%d pages)\n", stats.LongestTitle, stats.LongestPages)
	}
	if len(stats.TopAuthors) > 0 {
		fmt.Printf("Top authors: %s\n", strings.Join(stats.TopAuthors, ", "))
	}
}

func printActivityStats(stats activity.Stats, year int) {
	fmt.Printf("\nACTIVITY %d\n", year)
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Workouts: %d\n", stats.Count)
	fmt.Printf("Total distance: %.2f mi (longest: %.2f mi", stats.TotalMiles, stats.LongestMiles)
	if stats.LongestName != "" {
		fmt.Printf(", %q", stats.LongestName)
	}
	fmt.Println(")")
	fmt.Printf("Elevation gain: %.0f m\n", stats.TotalElevGainM)
	fmt.Printf("Calories: %.0f\n", stats.TotalCalories)

	types := make([]string, 0, len(stats.ByTypeCounts))
	for typ := range stats.ByTypeCounts {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		fmt.Printf("  %s: %d (%.2f mi)\n", typ, stats.ByTypeCounts[typ], stats.ByTypeMiles[typ])
	}
}

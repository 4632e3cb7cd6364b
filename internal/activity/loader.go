// Package activity loads a workout-activity CSV export and computes the
// surrounding statistics for the wrap-up. Activity data never enters
// reconciliation.
package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Entry is one activity row. Numeric cells degrade to zero on parse failure;
// rows without a parseable date are dropped at load time.
type Entry struct {
	ID             string
	Date           time.Time
	Name           string
	Type           string
	ElapsedSec     float64
	MovingSec      float64
	DistanceKm     float64
	AvgSpeedKmh    float64
	MaxSpeedKmh    float64
	ElevGainM      float64
	AvgHeartRate   float64
	MaxHeartRate   float64
	Calories       float64
	RelativeEffort float64
}

// dateLayout matches the export's "Nov 10, 2025, 6:12:03 PM" format.
const dateLayout = "Jan 2, 2006, 3:04:05 PM"

// Generic type values that keyword re-categorization may override.
var genericTypes = map[string]bool{"": true, "workout": true, "other": true}

// Keyword patterns for re-categorizing generic workouts by name.
var typePatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"Tennis", regexp.MustCompile(`\btennis\b|\bhit\b|\bhitting\b|\bhit session\b`)},
	{"Basketball", regexp.MustCompile(`\bbasketball\b|\bbball\b|\bpickup\b`)},
	{"Volleyball", regexp.MustCompile(`\bvolleyball\b|\bvball\b`)},
	{"Pickleball", regexp.MustCompile(`\bpickleball\b|\bpickle\b|\bpb\b`)},
}

// Load reads the activity CSV at path.
func Load(path string) ([]Entry, error) {
	slog.Debug("Opening activities CSV", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open activities file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["Activity Date"]; !ok {
		return nil, fmt.Errorf("activities file is missing an Activity Date column")
	}

	cell := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	num := func(record []string, name string) float64 {
		f, err := strconv.ParseFloat(cell(record, name), 64)
		if err != nil {
			return 0
		}
		return f
	}

	var entries []Entry
	line := 1
	dropped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			slog.Warn("Skipping malformed CSV row", "line", line, "err", err)
			continue
		}

		date, err := time.Parse(dateLayout, cell(record, "Activity Date"))
		if err != nil {
			dropped++
			continue
		}

		entry := Entry{
			ID:             cell(record, "Activity ID"),
			Date:           date,
			Name:           cell(record, "Activity Name"),
			Type:           cell(record, "Activity Type"),
			ElapsedSec:     num(record, "Elapsed Time"),
			MovingSec:      num(record, "Moving Time"),
			DistanceKm:     num(record, "Distance"),
			AvgSpeedKmh:    num(record, "Average Speed"),
			MaxSpeedKmh:    num(record, "Max Speed"),
			ElevGainM:      num(record, "Elevation Gain"),
			AvgHeartRate:   num(record, "Average Heart Rate"),
			MaxHeartRate:   num(record, "Max Heart Rate"),
			Calories:       num(record, "Calories"),
			RelativeEffort: num(record, "Relative Effort"),
		}
		entry.Type = recategorize(entry.Type, entry.Name)
		entries = append(entries, entry)
	}

	slog.Debug("Finished reading activities", "entries", len(entries), "dropped", dropped)
	return entries, nil
}

// recategorize replaces a generic activity type with one derived from name
// keywords. Specific types from the source are left alone.
func recategorize(typ, name string) string {
	if !genericTypes[strings.ToLower(typ)] {
		return typ
	}
	lower := strings.ToLower(name)
	for _, p := range typePatterns {
		if p.re.MatchString(lower) {
			return p.name
		}
	}
	if typ == "" {
		return "Workout"
	}
	return typ
}

// FilterYear keeps entries dated in year.
func FilterYear(entries []Entry, year int) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Date.Year() == year {
			out = append(out, e)
		}
	}
	return out
}

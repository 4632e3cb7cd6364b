// Package readinglog loads and filters a personal reading-log export in its
// native CSV form or as Parquet.
package readinglog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// Entry is one reading-log row. Numeric fields degrade to zero values when
// the source cell is malformed; DateRead is the zero time when unparseable.
type Entry struct {
	Title           string
	Author          string
	DateRead        time.Time
	OriginalPubYear int
	MyRating        float64
	NumPages        int
	ExclusiveShelf  string
}

// Loader handles loading of a reading-log export.
type Loader struct {
	path string
}

// NewLoader creates a loader for the export at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads every entry, detecting format by extension.
func (l *Loader) Load() ([]Entry, error) {
	ext := strings.ToLower(filepath.Ext(l.path))

	switch ext {
	case ".csv":
		return l.loadCSV()
	case ".parquet":
		return l.loadParquet()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .parquet)", ext)
	}
}

// dateLayouts the export has been observed to use.
var dateLayouts = []string{"2006/01/02", "2006-01-02", "01/02/2006"}

func (l *Loader) loadCSV() ([]Entry, error) {
	slog.Debug("Opening reading log CSV", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reading log: %w", err)
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
	if _, ok := col["Title"]; !ok {
		return nil, fmt.Errorf("reading log is missing a Title column")
	}

	cell := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var entries []Entry
	line := 1
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

		entry := Entry{
			Title:           cell(record, "Title"),
			Author:          cell(record, "Author"),
			ExclusiveShelf:  cell(record, "Exclusive Shelf"),
			DateRead:        parseDate(cell(record, "Date Read")),
			OriginalPubYear: parseInt(cell(record, "Original Publication Year")),
			MyRating:        parseFloat(cell(record, "My Rating")),
			NumPages:        parseInt(cell(record, "Number of Pages")),
		}
		if entry.Title == "" {
			continue
		}
		entries = append(entries, entry)
	}

	slog.Debug("Finished reading CSV", "entries", len(entries))
	return entries, nil
}

// parquetEntry mirrors Entry with parquet column bindings.
type parquetEntry struct {
	Title           string  `parquet:"title"`
	Author          string  `parquet:"author"`
	DateRead        string  `parquet:"date_read"`
	OriginalPubYear int32   `parquet:"original_publication_year"`
	MyRating        float64 `parquet:"my_rating"`
	NumPages        int32   `parquet:"number_of_pages"`
	ExclusiveShelf  string  `parquet:"exclusive_shelf"`
}

func (l *Loader) loadParquet() ([]Entry, error) {
	slog.Debug("Opening reading log parquet", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[parquetEntry](pf)
	defer reader.Close()

	var entries []Entry
	rows := make([]parquetEntry, 128)

	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			if row.Title == "" {
				continue
			}
			entries = append(entries, Entry{
				Title:           row.Title,
				Author:          row.Author,
				DateRead:        parseDate(row.DateRead),
				OriginalPubYear: int(row.OriginalPubYear),
				MyRating:        row.MyRating,
				NumPages:        int(row.NumPages),
				ExclusiveShelf:  row.ExclusiveShelf,
			})
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading parquet", "entries", len(entries))
	return entries, nil
}

// FilterYear keeps entries read in year. The shelf filter only applies when
// the source carries a shelf value: rows marked anything other than "read"
// (to-read, currently-reading) are excluded.
func FilterYear(entries []Entry, year int) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.DateRead.IsZero() || e.DateRead.Year() != year {
			continue
		}
		if e.ExclusiveShelf != "" && !strings.EqualFold(e.ExclusiveShelf, "read") {
			continue
		}
		out = append(out, e)
	}
	return out
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

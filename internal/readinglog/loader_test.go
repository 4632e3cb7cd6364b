package readinglog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, `Title,Author,Date Read,Original Publication Year,My Rating,Number of Pages,Exclusive Shelf
Dune,Frank Herbert,2025/03/12,1965,5,412,read
The Hobbit,J.R.R. Tolkien,2025/07/01,1937,4,310,read
Project Hail Mary,Andy Weir,,2021,0,476,to-read
Emma,Jane Austen,2024/11/02,1815,3,474,read
,Nobody,2025/01/01,2000,2,100,read
Bad Numbers,Someone,2025/02/02,notayear,notarating,notpages,read`)

	entries, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// The titleless row is skipped.
	if len(entries) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Title != "Dune" || first.Author != "Frank Herbert" {
		t.Errorf("Unexpected first entry: %+v", first)
	}
	if first.DateRead.Year() != 2025 || first.MyRating != 5 || first.NumPages != 412 {
		t.Errorf("First entry fields parsed wrong: %+v", first)
	}

	// Malformed numerics degrade to zero values.
	bad := entries[4]
	if bad.OriginalPubYear != 0 || bad.MyRating != 0 || bad.NumPages != 0 {
		t.Errorf("Expected zero values for malformed cells, got %+v", bad)
	}
}

func writeParquet(t *testing.T, rows []parquetEntry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.parquet")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create fixture: %v", err)
	}
	writer := parquet.NewGenericWriter[parquetEntry](file)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("Failed to write rows: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("Failed to close fixture: %v", err)
	}
	return path
}

func TestLoadParquet(t *testing.T) {
	path := writeParquet(t, []parquetEntry{
		{Title: "Dune", Author: "Frank Herbert", DateRead: "2025/03/12", OriginalPubYear: 1965, MyRating: 5, NumPages: 412, ExclusiveShelf: "read"},
		{Title: "", Author: "Nobody", DateRead: "2025/01/01", MyRating: 2, NumPages: 100, ExclusiveShelf: "read"},
		{Title: "Emma", Author: "Jane Austen", DateRead: "2024-11-02", OriginalPubYear: 1815, MyRating: 3, NumPages: 474, ExclusiveShelf: "read"},
	})

	entries, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// The titleless row is skipped.
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Title != "Dune" || first.Author != "Frank Herbert" {
		t.Errorf("Unexpected first entry: %+v", first)
	}
	if first.DateRead.Year() != 2025 || first.OriginalPubYear != 1965 || first.MyRating != 5 || first.NumPages != 412 {
		t.Errorf("First entry fields mapped wrong: %+v", first)
	}
	if first.ExclusiveShelf != "read" {
		t.Errorf("Expected shelf read, got %q", first.ExclusiveShelf)
	}

	// The second surviving row uses the dashed date layout.
	second := entries[1]
	if second.Title != "Emma" || second.DateRead.Year() != 2024 {
		t.Errorf("Unexpected second entry: %+v", second)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	if _, err := NewLoader("export.xlsx").Load(); err == nil {
		t.Error("Expected an error for unsupported format")
	}
}

func TestLoadRejectsMissingTitleColumn(t *testing.T) {
	path := writeCSV(t, "Name,Rating\nDune,5\n")
	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected an error when the Title column is absent")
	}
}

func TestFilterYear(t *testing.T) {
	path := writeCSV(t, `Title,Author,Date Read,Original Publication Year,My Rating,Number of Pages,Exclusive Shelf
Dune,Frank Herbert,2025/03/12,1965,5,412,read
The Hobbit,J.R.R. Tolkien,2025/07/01,1937,4,310,read
Project Hail Mary,Andy Weir,2025/05/05,2021,0,476,to-read
Emma,Jane Austen,2024/11/02,1815,3,474,read
Undated,Someone,,2000,2,100,read`)

	entries, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	filtered := FilterYear(entries, 2025)
	if len(filtered) != 2 {
		t.Fatalf("Expected 2 entries for 2025, got %d", len(filtered))
	}
	for _, e := range filtered {
		if e.DateRead.Year() != 2025 {
			t.Errorf("Entry %s outside target year", e.Title)
		}
		if e.ExclusiveShelf != "read" {
			t.Errorf("Entry %s should have been shelf-filtered", e.Title)
		}
	}
}

func TestComputeStats(t *testing.T) {
	entries := []Entry{
		{Title: "Dune", Author: "Frank Herbert", MyRating: 5, NumPages: 412},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", MyRating: 4, NumPages: 310},
		{Title: "Dune Messiah", Author: "Frank Herbert", MyRating: 0, NumPages: 256},
	}

	stats := ComputeStats(entries)

	if stats.BookCount != 3 {
		t.Errorf("Expected BookCount=3, got %d", stats.BookCount)
	}
	// Unrated rows stay out of the average.
	expectedAvg := (5.0 + 4.0) / 2.0
	if stats.AvgRating != expectedAvg {
		t.Errorf("Expected AvgRating=%.2f, got %.2f", expectedAvg, stats.AvgRating)
	}
	if stats.TotalPages != 978 {
		t.Errorf("Expected TotalPages=978, got %d", stats.TotalPages)
	}
	if stats.LongestTitle != "Dune" || stats.LongestPages != 412 {
		t.Errorf("Expected longest book Dune (412), got %s (%d)", stats.LongestTitle, stats.LongestPages)
	}
	if len(stats.TopAuthors) == 0 || stats.TopAuthors[0] != "Frank Herbert" {
		t.Errorf("Expected Frank Herbert on top, got %v", stats.TopAuthors)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.BookCount != 0 || stats.AvgRating != 0 || stats.TotalPages != 0 {
		t.Errorf("Expected zero-value stats, got %+v", stats)
	}
}

// Package report persists harvest artifacts and writes the annotated-table
// outputs: a CSV of rows and a YAML run report with the match diagnostics.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/libwrapup/wrapup/internal/harvest"
	"github.com/libwrapup/wrapup/internal/reconcile"
)

// SaveItems writes harvested items as JSON so a later reconcile run can pick
// them up without re-harvesting.
func SaveItems(path string, items []harvest.Item) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create items file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(items); err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}
	return nil
}

// LoadItems reads a previously saved harvest.
func LoadItems(path string) ([]harvest.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items file: %w", err)
	}
	var items []harvest.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse items file: %w", err)
	}
	return items, nil
}

// WriteCSV writes the annotated table as title,author,rating rows.
func WriteCSV(path string, rows []reconcile.AnnotatedItem) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"title", "author", "rating"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Title, row.Author, row.RatingLabel()}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// RunConfig echoes the inputs a run was made with.
type RunConfig struct {
	TargetYear  int     `yaml:"targetyear"`
	Threshold   float64 `yaml:"threshold"`
	HarvestStop string  `yaml:"harveststop,omitempty"`
	PagesSeen   int     `yaml:"pagesseen,omitempty"`
	Timestamp   string  `yaml:"timestamp"`
}

// RowReport is one annotated row in the YAML report.
type RowReport struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Rating string `yaml:"rating"`
	Match  string `yaml:"match"`
}

// Diagnostic summarizes match quality for operators. Unmatched titles are
// listed for visibility only; nothing downstream consumes them.
type Diagnostic struct {
	Matched   int      `yaml:"matched"`
	Total     int      `yaml:"total"`
	Unmatched []string `yaml:"unmatched,omitempty"`
}

// RunReport is the complete YAML document for one run.
type RunReport struct {
	Config     RunConfig   `yaml:"config"`
	Rows       []RowReport `yaml:"rows"`
	Diagnostic Diagnostic  `yaml:"diagnostic"`
}

// NewRunReport assembles a report from a reconcile result.
func NewRunReport(cfg RunConfig, res reconcile.Result) RunReport {
	rep := RunReport{
		Config:     cfg,
		Rows:       make([]RowReport, 0, len(res.Rows)),
		Diagnostic: Diagnostic{Matched: res.Matched, Total: res.Total, Unmatched: res.Unmatched},
	}
	for _, row := range res.Rows {
		rep.Rows = append(rep.Rows, RowReport{
			Title:  row.Title,
			Author: row.Author,
			Rating: row.RatingLabel(),
			Match:  row.Kind.String(),
		})
	}
	return rep
}

// SaveToYAML writes the run report into dir with a timestamped filename and
// returns the path written.
func SaveToYAML(dir string, rep RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	if rep.Config.Timestamp == "" {
		rep.Config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	path := filepath.Join(dir, fmt.Sprintf("wrapup-%s.yaml", rep.Config.Timestamp))

	data, err := yaml.Marshal(&rep)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return path, nil
}

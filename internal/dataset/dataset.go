// Package dataset reads problem records from the batch CSV. The same file
// doubles as run state: finished problems get their final_outcome column
// written back, and rows whose final_outcome is already filled are skipped
// on load, which makes batch runs resumable after an interrupt.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Problem is one immutable input record.
type Problem struct {
	ID       string
	Text     string
	Solution string
	Hint     string
}

// Required dataset columns. hint and final_outcome are optional.
const (
	colProblemID    = "problem_id"
	colProblemText  = "problem_text"
	colSolution     = "actual_solution"
	colHint         = "hint"
	colFinalOutcome = "final_outcome"
)

// File is the dataset CSV, owning both the read side and the outcome
// write-back that marks rows processed.
type File struct {
	path string
	mu   sync.Mutex
}

// Open wraps the dataset at path. The file is not touched until Load or
// MarkOutcome.
func Open(path string) *File {
	return &File{path: path}
}

// Load reads the dataset and returns its unprocessed problems in source
// order, plus the count of rows skipped because they already carry an
// outcome. A missing file is a startup error.
func (f *File) Load() ([]Problem, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := os.Open(f.path)
	if err != nil {
		return nil, 0, fmt.Errorf("dataset: open %s: %w", f.path, err)
	}
	defer file.Close()
	return parse(file, f.path)
}

// MarkOutcome writes outcome into the final_outcome column of every row
// with the given problem id, adding the column when the source file lacks
// it. The rewrite is atomic; readers never see a half-written dataset.
func (f *File) MarkOutcome(problemID, outcome string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", f.path, err)
	}
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	file.Close()
	if err != nil {
		return fmt.Errorf("dataset: read %s: %w", f.path, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("dataset: %s is empty", f.path)
	}

	columns := indexColumns(rows[0])
	idIdx, ok := columns[colProblemID]
	if !ok {
		return fmt.Errorf("dataset: %s is missing required column %s", f.path, colProblemID)
	}
	outIdx, ok := columns[colFinalOutcome]
	if !ok {
		rows[0] = append(rows[0], colFinalOutcome)
		outIdx = len(rows[0]) - 1
	}

	found := false
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		for len(row) <= outIdx {
			row = append(row, "")
		}
		if idIdx < len(row) && strings.TrimSpace(row[idIdx]) == problemID {
			row[outIdx] = outcome
			found = true
		}
		rows[i] = row
	}
	if !found {
		return fmt.Errorf("dataset: problem %s not found in %s", problemID, f.path)
	}
	return f.rewrite(rows)
}

func (f *File) rewrite(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".dataset-*.csv")
	if err != nil {
		return fmt.Errorf("dataset: create temp file: %w", err)
	}
	writer := csv.NewWriter(tmp)
	writeErr := writer.WriteAll(rows)
	if err := tmp.Close(); writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("dataset: rewrite %s: %w", f.path, writeErr)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("dataset: replace %s: %w", f.path, err)
	}
	return nil
}

// Load reads the dataset at path once, without retaining a handle.
func Load(path string) ([]Problem, int, error) {
	return Open(path).Load()
}

func parse(r io.Reader, path string) ([]Problem, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("dataset: read %s header: %w", path, err)
	}
	columns := indexColumns(header)
	for _, required := range []string{colProblemID, colProblemText, colSolution} {
		if _, ok := columns[required]; !ok {
			return nil, 0, fmt.Errorf("dataset: %s is missing required column %s", path, required)
		}
	}

	var problems []Problem
	skipped := 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("dataset: read %s line %d: %w", path, line, err)
		}
		if field(row, columns, colFinalOutcome) != "" {
			skipped++
			continue
		}
		problem := Problem{
			ID:       field(row, columns, colProblemID),
			Text:     field(row, columns, colProblemText),
			Solution: field(row, columns, colSolution),
			Hint:     field(row, columns, colHint),
		}
		if problem.ID == "" && problem.Text == "" {
			continue
		}
		problems = append(problems, problem)
	}
	return problems, skipped, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	return columns
}

func field(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

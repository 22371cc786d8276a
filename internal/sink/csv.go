package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// csvHeader is the fixed column order for CSV sinks. Appending runs must
// see the same header a fresh run writes.
var csvHeader = []string{
	"problem_id", "problem_text", "actual_solution", "hint_used",
	"questions", "answers", "agent_opinions",
	"experimenter_thoughts", "skeptic_thoughts",
	"qa_reasons", "user_instructions",
	"boss_logic", "qa_reasoning", "try_number", "tries_data",
	"outcome", "timestamp",
}

// CSV appends outcome records to a CSV file, writing the header only when
// the file is created fresh.
type CSV struct {
	path string
	mu   sync.Mutex
}

// NewCSV opens (or creates) the CSV sink at path.
func NewCSV(path string) (*CSV, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sink: ensure dir for %s: %w", path, err)
		}
	}
	sink := &CSV{path: path}
	info, err := os.Stat(path)
	switch {
	case err == nil && info.Size() > 0:
		return sink, nil
	case err != nil && !os.IsNotExist(err):
		return nil, fmt.Errorf("sink: stat %s: %w", path, err)
	}
	if err := sink.writeRow(csvHeader); err != nil {
		return nil, fmt.Errorf("sink: write header: %w", err)
	}
	return sink, nil
}

// Append implements Sink.
func (s *CSV) Append(record Record) error {
	return s.writeRow([]string{
		record.ProblemID,
		record.ProblemText,
		record.Solution,
		strconv.FormatBool(record.HintUsed),
		record.Questions,
		record.Answers,
		record.BossOpinions,
		record.Experiments,
		record.Skepticism,
		record.QAReasons,
		record.HintNotices,
		record.BossAnswer,
		record.QAReason,
		strconv.Itoa(record.TryNumber),
		record.TriesData,
		record.Outcome,
		record.Timestamp.UTC().Format(time.RFC3339),
	})
}

// Close implements Sink. The file handle is opened per append, so there
// is nothing to release.
func (s *CSV) Close() error { return nil }

func (s *CSV) writeRow(row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("sink: open %s: %w", s.path, err)
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("sink: write row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("sink: flush row: %w", err)
	}
	return nil
}

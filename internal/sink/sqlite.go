package sink

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite appends outcome records to a local SQLite database. WAL mode and
// a busy timeout keep concurrent appenders from tripping over SQLITE_BUSY.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dbPath and ensures the
// outcomes table exists.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sink: create database directory: %w", err)
		}
	}
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sink: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: ping database: %w", err)
	}
	sink := &SQLite{db: db}
	if err := sink.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: initialize schema: %w", err)
	}
	return sink, nil
}

func (s *SQLite) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		problem_id TEXT NOT NULL,
		problem_text TEXT NOT NULL,
		actual_solution TEXT NOT NULL,
		hint_used INTEGER NOT NULL,
		questions TEXT NOT NULL,
		answers TEXT NOT NULL,
		agent_opinions TEXT NOT NULL,
		experimenter_thoughts TEXT NOT NULL,
		skeptic_thoughts TEXT NOT NULL,
		qa_reasons TEXT NOT NULL,
		user_instructions TEXT NOT NULL,
		boss_logic TEXT NOT NULL,
		qa_reasoning TEXT NOT NULL,
		try_number INTEGER NOT NULL,
		tries_data TEXT NOT NULL,
		outcome TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_outcomes_problem ON outcomes(problem_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Append implements Sink.
func (s *SQLite) Append(record Record) error {
	const query = `
	INSERT INTO outcomes (
		problem_id, problem_text, actual_solution, hint_used,
		questions, answers, agent_opinions,
		experimenter_thoughts, skeptic_thoughts,
		qa_reasons, user_instructions,
		boss_logic, qa_reasoning, try_number, tries_data, outcome, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	hintUsed := 0
	if record.HintUsed {
		hintUsed = 1
	}
	_, err := s.db.Exec(query,
		record.ProblemID,
		record.ProblemText,
		record.Solution,
		hintUsed,
		record.Questions,
		record.Answers,
		record.BossOpinions,
		record.Experiments,
		record.Skepticism,
		record.QAReasons,
		record.HintNotices,
		record.BossAnswer,
		record.QAReason,
		record.TryNumber,
		record.TriesData,
		record.Outcome,
		record.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sink: insert outcome for %s: %w", record.ProblemID, err)
	}
	return nil
}

// Close implements Sink.
func (s *SQLite) Close() error {
	return s.db.Close()
}

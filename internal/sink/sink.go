// Package sink persists finished outcome records. Sinks are append-only;
// one row is written per record and rows are never rewritten.
package sink

import "time"

// Outcome values persisted in the outcome column.
const (
	OutcomeSuccess = "success"
	OutcomeFail    = "fail"
)

// Record is the persisted artifact for one terminal (or, under the
// per-try policy, intermediate) state of a problem.
type Record struct {
	ProblemID    string
	ProblemText  string
	Solution     string
	HintUsed     bool
	Questions    string // JSON array
	Answers      string // JSON array
	BossOpinions string // JSON array, every boss proposal across tries
	Experiments  string // JSON array
	Skepticism   string // JSON array
	QAReasons    string // JSON array, every QA reason across tries
	HintNotices  string // JSON array, one entry per hint injection
	BossAnswer   string
	QAReason     string
	TryNumber    int
	TriesData    string // JSON array of per-try entries
	Outcome      string
	Timestamp    time.Time
}

// Sink is an append-only tabular store for outcome records.
type Sink interface {
	Append(record Record) error
	Close() error
}

// Package session holds the mutable per-problem state accumulated across
// tries. Sequences are append-only and insertion-ordered; nothing is
// truncated until the problem's processing ends and the state is discarded.
package session

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TryLog records the outcome of a single try.
type TryLog struct {
	Try      int    `json:"try"`
	Proposed string `json:"proposed_answer"`
	Solved   bool   `json:"success"`
	Reason   string `json:"qa_reason"`
}

// State is owned exclusively by the controller for the duration of one
// problem's processing.
type State struct {
	questions   []string
	answers     []string
	experiments []string
	skepticism  []string
	proposals   []string
	qaReasons   []string
	hintNotices []string
	tries       []TryLog
}

// New returns empty session state.
func New() *State {
	return &State{}
}

func (s *State) AddQuestions(v string)  { s.questions = append(s.questions, v) }
func (s *State) AddAnswers(v string)    { s.answers = append(s.answers, v) }
func (s *State) AddExperiment(v string) { s.experiments = append(s.experiments, v) }
func (s *State) AddSkepticism(v string) { s.skepticism = append(s.skepticism, v) }
func (s *State) AddProposal(v string)   { s.proposals = append(s.proposals, v) }
func (s *State) AddQAReason(v string)   { s.qaReasons = append(s.qaReasons, v) }
func (s *State) AddHintNotice(v string) { s.hintNotices = append(s.hintNotices, v) }

// LogTry appends one per-try entry.
func (s *State) LogTry(entry TryLog) {
	s.tries = append(s.tries, entry)
}

// Questions returns a copy of the accumulated questioner outputs.
func (s *State) Questions() []string { return copyOf(s.questions) }

// Answers returns a copy of the accumulated answerer outputs.
func (s *State) Answers() []string { return copyOf(s.answers) }

// Experiments returns a copy of the accumulated experimenter outputs.
func (s *State) Experiments() []string { return copyOf(s.experiments) }

// Skepticism returns a copy of the accumulated skeptic outputs.
func (s *State) Skepticism() []string { return copyOf(s.skepticism) }

// Proposals returns a copy of the accumulated boss proposals.
func (s *State) Proposals() []string { return copyOf(s.proposals) }

// QAReasons returns a copy of the accumulated QA reasons.
func (s *State) QAReasons() []string { return copyOf(s.qaReasons) }

// HintNotices returns a copy of the recorded hint injections.
func (s *State) HintNotices() []string { return copyOf(s.hintNotices) }

// Tries returns a copy of the per-try log.
func (s *State) Tries() []TryLog {
	return append([]TryLog{}, s.tries...)
}

// QuestionsJSON serializes the question sequence for persistence.
func (s *State) QuestionsJSON() string { return encodeSeq(s.questions) }

// AnswersJSON serializes the answer sequence for persistence.
func (s *State) AnswersJSON() string { return encodeSeq(s.answers) }

// ExperimentsJSON serializes the experimenter sequence for persistence.
func (s *State) ExperimentsJSON() string { return encodeSeq(s.experiments) }

// SkepticismJSON serializes the skeptic sequence for persistence.
func (s *State) SkepticismJSON() string { return encodeSeq(s.skepticism) }

// ProposalsJSON serializes the boss proposal sequence for persistence.
func (s *State) ProposalsJSON() string { return encodeSeq(s.proposals) }

// QAReasonsJSON serializes the QA reason sequence for persistence.
func (s *State) QAReasonsJSON() string { return encodeSeq(s.qaReasons) }

// HintNoticesJSON serializes the hint notices for persistence.
func (s *State) HintNoticesJSON() string { return encodeSeq(s.hintNotices) }

// TriesJSON serializes the per-try log for persistence.
func (s *State) TriesJSON() string {
	data, err := json.Marshal(s.tries)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// Transcript renders the entire accumulated history as the hail-mary
// input block.
func (s *State) Transcript() string {
	var b strings.Builder
	b.WriteString("HISTORY:\n")
	fmt.Fprintf(&b, "Questions: %s\n", encodeSeq(s.questions))
	fmt.Fprintf(&b, "Answers: %s\n", encodeSeq(s.answers))
	fmt.Fprintf(&b, "Experiments: %s\n", encodeSeq(s.experiments))
	fmt.Fprintf(&b, "Skepticism: %s", encodeSeq(s.skepticism))
	return b.String()
}

func copyOf(seq []string) []string {
	return append([]string{}, seq...)
}

func encodeSeq(seq []string) string {
	if len(seq) == 0 {
		return "[]"
	}
	data, err := json.Marshal(seq)
	if err != nil {
		return "[]"
	}
	return string(data)
}

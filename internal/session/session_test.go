package session

import (
	"strings"
	"testing"
)

func TestSequencesOnlyGrow(t *testing.T) {
	state := New()
	if got := state.QuestionsJSON(); got != "[]" {
		t.Fatalf("empty questions = %s", got)
	}
	state.AddQuestions("what is the base case?")
	state.AddQuestions("does order matter?")
	state.AddAnswers("n = 0")
	if got := len(state.Questions()); got != 2 {
		t.Fatalf("questions = %d, want 2", got)
	}
	// Mutating the returned copy must not touch internal state.
	qs := state.Questions()
	qs[0] = "clobbered"
	if state.Questions()[0] != "what is the base case?" {
		t.Fatal("accessor leaked internal slice")
	}
}

func TestTranscriptIncludesAllSequences(t *testing.T) {
	state := New()
	state.AddQuestions("q1")
	state.AddAnswers("a1")
	state.AddExperiment("e1")
	state.AddSkepticism("s1")
	transcript := state.Transcript()
	for _, want := range []string{"HISTORY:", `Questions: ["q1"]`, `Answers: ["a1"]`, `Experiments: ["e1"]`, `Skepticism: ["s1"]`} {
		if !strings.Contains(transcript, want) {
			t.Fatalf("transcript missing %q:\n%s", want, transcript)
		}
	}
}

func TestPerTryHistoriesAccumulate(t *testing.T) {
	state := New()
	state.AddProposal("try 1: 41")
	state.AddProposal("try 2: 42")
	state.AddQAReason("try 1: off by one")
	state.AddHintNotice("try 3: hint provided - think multiplication")

	if got := state.Proposals(); len(got) != 2 || got[1] != "try 2: 42" {
		t.Fatalf("proposals = %v", got)
	}
	if got := state.QAReasons(); len(got) != 1 || got[0] != "try 1: off by one" {
		t.Fatalf("qa reasons = %v", got)
	}
	if got := state.HintNotices(); len(got) != 1 {
		t.Fatalf("hint notices = %v", got)
	}
	if got := state.ProposalsJSON(); !strings.Contains(got, "try 2: 42") {
		t.Fatalf("proposals json = %s", got)
	}
	if got := state.QAReasonsJSON(); !strings.Contains(got, "off by one") {
		t.Fatalf("qa reasons json = %s", got)
	}
	if got := state.HintNoticesJSON(); !strings.Contains(got, "think multiplication") {
		t.Fatalf("hint notices json = %s", got)
	}
}

func TestTriesJSONRoundsTrips(t *testing.T) {
	state := New()
	state.LogTry(TryLog{Try: 1, Proposed: "42", Solved: false, Reason: "wrong"})
	state.LogTry(TryLog{Try: 2, Proposed: "17", Solved: true, Reason: "match"})
	got := state.TriesJSON()
	for _, want := range []string{`"try":1`, `"try":2`, `"success":true`, `"proposed_answer":"42"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("tries json missing %q: %s", want, got)
		}
	}
	if tries := state.Tries(); len(tries) != 2 || tries[1].Try != 2 || !tries[1].Solved {
		t.Fatalf("tries = %+v", tries)
	}
}

package runner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/saffi955/INNOVAI/internal/dataset"
	"github.com/saffi955/INNOVAI/internal/sink"
)

type stubProcessor struct {
	outcomes  map[string]string
	processed []string
	failWith  error
	failOn    string
	onProcess func(id string)
}

func (p *stubProcessor) Process(_ context.Context, problem dataset.Problem) (sink.Record, error) {
	if p.onProcess != nil {
		p.onProcess(problem.ID)
	}
	if p.failWith != nil && problem.ID == p.failOn {
		return sink.Record{}, p.failWith
	}
	p.processed = append(p.processed, problem.ID)
	outcome := p.outcomes[problem.ID]
	if outcome == "" {
		outcome = sink.OutcomeFail
	}
	return sink.Record{ProblemID: problem.ID, Outcome: outcome}, nil
}

func problems(ids ...string) []dataset.Problem {
	out := make([]dataset.Problem, len(ids))
	for i, id := range ids {
		out[i] = dataset.Problem{ID: id, Text: "problem " + id, Solution: "s"}
	}
	return out
}

func TestRunTalliesOutcomesInOrder(t *testing.T) {
	proc := &stubProcessor{outcomes: map[string]string{
		"p1": sink.OutcomeSuccess,
		"p3": sink.OutcomeSuccess,
	}}
	r, err := New(proc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := r.Run(context.Background(), problems("p1", "p2", "p3"), 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 3 || summary.Solved != 2 || summary.Failed != 1 || summary.Skipped != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if got := strings.Join(proc.processed, ","); got != "p1,p2,p3" {
		t.Fatalf("processed order = %s", got)
	}
	if rate := summary.SuccessRate(); rate < 66.6 || rate > 66.7 {
		t.Fatalf("success rate = %.2f", rate)
	}
}

func TestRunStopsOnCancellationBetweenProblems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	proc := &stubProcessor{outcomes: map[string]string{"p1": sink.OutcomeSuccess}}
	proc.onProcess = func(id string) {
		if id == "p2" {
			cancel()
		}
	}
	r, err := New(proc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := r.Run(ctx, problems("p1", "p2", "p3"), 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	// p3 never started; the partial tally survives.
	if summary.Processed != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(proc.processed) != 2 {
		t.Fatalf("processed = %v", proc.processed)
	}
}

func TestRunPropagatesProcessorError(t *testing.T) {
	wantErr := context.Canceled
	proc := &stubProcessor{failWith: wantErr, failOn: "p2"}
	r, err := New(proc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := r.Run(context.Background(), problems("p1", "p2", "p3"), 0)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

type stubMarker struct {
	marked []string
	err    error
}

func (m *stubMarker) MarkOutcome(problemID, outcome string) error {
	if m.err != nil {
		return m.err
	}
	m.marked = append(m.marked, problemID+"="+outcome)
	return nil
}

func TestRunMarksFinishedProblems(t *testing.T) {
	proc := &stubProcessor{outcomes: map[string]string{"p1": sink.OutcomeSuccess}}
	marker := &stubMarker{}
	r, err := New(proc, nil, WithMarker(marker))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Run(context.Background(), problems("p1", "p2"), 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(marker.marked, ","); got != "p1=success,p2=fail" {
		t.Fatalf("marked = %s", got)
	}
}

func TestRunSurvivesMarkerFailure(t *testing.T) {
	proc := &stubProcessor{outcomes: map[string]string{"p1": sink.OutcomeSuccess}}
	marker := &stubMarker{err: errors.New("dataset locked")}
	r, err := New(proc, nil, WithMarker(marker))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := r.Run(context.Background(), problems("p1", "p2"), 0)
	if err != nil {
		t.Fatalf("Run should tolerate mark failures: %v", err)
	}
	if summary.Processed != 2 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestNewRejectsNilProcessor(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Fatal("accepted nil processor")
	}
}

func TestSummaryString(t *testing.T) {
	s := Summary{Processed: 4, Solved: 3, Failed: 1, Skipped: 2}
	got := s.String()
	for _, want := range []string{"4 problems", "3 solved", "1 failed", "75.0%", "2 skipped"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary string %q missing %q", got, want)
		}
	}
}

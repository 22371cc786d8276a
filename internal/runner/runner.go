// Package runner walks a problem set through the solver and keeps the
// session tally.
package runner

import (
	"context"
	"fmt"

	"github.com/saffi955/INNOVAI/internal/dataset"
	"github.com/saffi955/INNOVAI/internal/logbook"
	"github.com/saffi955/INNOVAI/internal/sink"
)

// Processor runs one problem to a terminal state.
type Processor interface {
	Process(ctx context.Context, problem dataset.Problem) (sink.Record, error)
}

// Marker records a problem's terminal outcome back into the problem
// source so the row is skipped on the next run.
type Marker interface {
	MarkOutcome(problemID, outcome string) error
}

// Summary is the session tally reported when a run ends, including runs cut
// short by the operator.
type Summary struct {
	Processed int
	Solved    int
	Failed    int
	Skipped   int
}

// SuccessRate is Solved over Processed, in percent. Zero when nothing ran.
func (s Summary) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Solved) / float64(s.Processed) * 100
}

func (s Summary) String() string {
	return fmt.Sprintf("processed %d problems (%d solved, %d failed, %.1f%% success), %d skipped as already done",
		s.Processed, s.Solved, s.Failed, s.SuccessRate(), s.Skipped)
}

// Runner drains the problem queue sequentially. Cancellation is honored
// between problems; the in-flight problem decides for itself how to stop.
type Runner struct {
	proc   Processor
	marker Marker
	log    *logbook.Logbook
}

// Option customizes the runner.
type Option func(*Runner)

// WithMarker marks each finished problem as processed in the source.
func WithMarker(m Marker) Option {
	return func(r *Runner) {
		r.marker = m
	}
}

// New wires a runner over the given processor.
func New(proc Processor, book *logbook.Logbook, opts ...Option) (*Runner, error) {
	if proc == nil {
		return nil, fmt.Errorf("runner: processor is required")
	}
	runner := &Runner{proc: proc, log: book}
	for _, opt := range opts {
		if opt != nil {
			opt(runner)
		}
	}
	return runner, nil
}

// Run processes the problems in order and returns the session summary. The
// summary covers whatever completed before cancellation; the context error
// is returned alongside it so callers can tell a clean finish from an
// interrupted one.
func (r *Runner) Run(ctx context.Context, problems []dataset.Problem, skipped int) (Summary, error) {
	summary := Summary{Skipped: skipped}
	r.log.Info("starting run: %d problems queued, %d already done", len(problems), skipped)

	for _, problem := range problems {
		if err := ctx.Err(); err != nil {
			r.log.Warn("run interrupted: %s", summary)
			return summary, err
		}
		record, err := r.proc.Process(ctx, problem)
		if err != nil {
			r.log.Warn("run interrupted during problem %s: %s", problem.ID, summary)
			return summary, err
		}
		summary.Processed++
		if record.Outcome == sink.OutcomeSuccess {
			summary.Solved++
		} else {
			summary.Failed++
		}
		// Write the outcome back so the next run skips this row. Losing a
		// mark means one redundant reprocess, not a lost record.
		if r.marker != nil {
			if err := r.marker.MarkOutcome(problem.ID, record.Outcome); err != nil {
				r.log.Warn("mark problem %s processed: %v", problem.ID, err)
			}
		}
	}

	r.log.Info("run complete: %s", summary)
	return summary, nil
}

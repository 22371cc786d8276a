// Package solver drives the retry/escalation state machine for one problem
// at a time: a boss attempt per try, a questioner/answerer/experimenter/
// skeptic panel from the second try on, hint injection past a threshold,
// and a final hail-mary attempt over the full accumulated history.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/saffi955/INNOVAI/internal/agent"
	"github.com/saffi955/INNOVAI/internal/dataset"
	"github.com/saffi955/INNOVAI/internal/logbook"
	"github.com/saffi955/INNOVAI/internal/session"
	"github.com/saffi955/INNOVAI/internal/sink"
)

// RecordPolicy selects which rows are persisted per problem.
type RecordPolicy string

const (
	// RecordTerminal persists exactly one row per problem, at its terminal
	// state. This is the default.
	RecordTerminal RecordPolicy = "terminal"
	// RecordEveryTry additionally persists one row per failed try.
	RecordEveryTry RecordPolicy = "every"
)

// Config carries the tunable loop parameters.
type Config struct {
	// MaxTries is the normal try budget; the hail mary runs after it.
	MaxTries int
	// HintThreshold is the try index after which the hint becomes visible
	// to the boss. Below it the boss sees the explicit "None" sentinel.
	HintThreshold int
	// RecordPolicy defaults to RecordTerminal when empty.
	RecordPolicy RecordPolicy
}

func (c Config) validate() error {
	if c.MaxTries < 1 {
		return fmt.Errorf("solver: max tries must be >= 1, got %d", c.MaxTries)
	}
	if c.HintThreshold < 0 {
		return fmt.Errorf("solver: hint threshold must be >= 0, got %d", c.HintThreshold)
	}
	switch c.RecordPolicy {
	case "", RecordTerminal, RecordEveryTry:
		return nil
	default:
		return fmt.Errorf("solver: unknown record policy %q", c.RecordPolicy)
	}
}

// Controller owns the per-problem session state and drives the try loop.
type Controller struct {
	cfg    Config
	caller agent.Caller
	judge  Judge
	out    sink.Sink
	log    *logbook.Logbook
	now    func() time.Time
}

// Option customizes the controller.
type Option func(*Controller)

// WithLogbook attaches a logbook for stage-transition entries.
func WithLogbook(book *logbook.Logbook) Option {
	return func(c *Controller) {
		c.log = book
	}
}

// WithClock overrides the record timestamp source (tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		if clock != nil {
			c.now = clock
		}
	}
}

// New validates the configuration and wires up a controller.
func New(cfg Config, caller agent.Caller, judge Judge, out sink.Sink, opts ...Option) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, fmt.Errorf("solver: agent caller is required")
	}
	if judge == nil {
		return nil, fmt.Errorf("solver: verdict judge is required")
	}
	if out == nil {
		return nil, fmt.Errorf("solver: result sink is required")
	}
	if cfg.RecordPolicy == "" {
		cfg.RecordPolicy = RecordTerminal
	}
	ctrl := &Controller{
		cfg:    cfg,
		caller: caller,
		judge:  judge,
		out:    out,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ctrl)
		}
	}
	return ctrl, nil
}

// Process runs the problem to a terminal state and returns its outcome
// record. On cancellation the in-flight call is allowed to finish, nothing
// is persisted for this problem, and the context error is returned.
func (c *Controller) Process(ctx context.Context, problem dataset.Problem) (sink.Record, error) {
	state := session.New()
	c.log.Info("processing problem %s", problem.ID)

	for try := 1; try <= c.cfg.MaxTries; try++ {
		if err := ctx.Err(); err != nil {
			c.log.Warn("problem %s: stop requested at try %d, discarding in-flight state", problem.ID, try)
			return sink.Record{}, err
		}
		hintActive := try > c.cfg.HintThreshold
		c.log.Info("problem %s: try %d/%d (hint active: %t)", problem.ID, try, c.cfg.MaxTries, hintActive)

		var bossInput string
		if try == 1 {
			// Fast path: no panel cost on the first attempt. The hint line
			// still rides along when the threshold already passed.
			bossInput = directInput(problem, bossHint(problem, hintActive))
		} else {
			bossInput = c.runPanel(ctx, problem, state, bossHint(problem, hintActive))
		}
		if hintActive && problem.Hint != "" {
			state.AddHintNotice(fmt.Sprintf("try %d: hint provided - %s", try, problem.Hint))
		}

		proposed := c.stage(ctx, agent.RoleBoss, bossInput)
		state.AddProposal(fmt.Sprintf("try %d: %s", try, proposed))

		v := c.judge.Judge(ctx, problem, proposed)
		// A cancelled context aborts in-flight calls, which surface here as
		// empty outputs and a failed-closed verdict. That is interrupted
		// state, not a real exhausted attempt; discard it unpersisted.
		if err := ctx.Err(); err != nil {
			c.log.Warn("problem %s: stop requested during try %d, discarding in-flight state", problem.ID, try)
			return sink.Record{}, err
		}
		state.AddQAReason(fmt.Sprintf("try %d: %s", try, v.Reason))
		state.LogTry(session.TryLog{Try: try, Proposed: proposed, Solved: v.Solved, Reason: v.Reason})
		c.log.Info("problem %s: try %d verdict solved=%t reason=%s", problem.ID, try, v.Solved, v.Reason)

		if v.Solved {
			record := c.buildRecord(problem, state, proposed, v.Reason, try, hintActive, sink.OutcomeSuccess)
			c.persist(record)
			c.log.Info("problem %s: solved on try %d", problem.ID, try)
			return record, nil
		}
		if c.cfg.RecordPolicy == RecordEveryTry {
			c.persist(c.buildRecord(problem, state, proposed, v.Reason, try, hintActive, sink.OutcomeFail))
		}
	}

	if err := ctx.Err(); err != nil {
		c.log.Warn("problem %s: stop requested before hail mary, discarding in-flight state", problem.ID)
		return sink.Record{}, err
	}
	return c.hailMary(ctx, problem, state)
}

// hailMary runs the final attempt over the entire accumulated history. It
// is not subject to the hint threshold: the hint rides along explicitly.
func (c *Controller) hailMary(ctx context.Context, problem dataset.Problem, state *session.State) (sink.Record, error) {
	finalTry := c.cfg.MaxTries + 1
	c.log.Info("problem %s: hail mary (try %d)", problem.ID, finalTry)

	proposed := c.stage(ctx, agent.RoleBoss, hailMaryInput(problem, state))
	state.AddProposal(fmt.Sprintf("try %d (hail mary): %s", finalTry, proposed))

	v := c.judge.Judge(ctx, problem, proposed)
	if err := ctx.Err(); err != nil {
		c.log.Warn("problem %s: stop requested during hail mary, discarding in-flight state", problem.ID)
		return sink.Record{}, err
	}
	state.AddQAReason(fmt.Sprintf("try %d: %s", finalTry, v.Reason))
	state.LogTry(session.TryLog{Try: finalTry, Proposed: proposed, Solved: v.Solved, Reason: v.Reason})

	outcome := sink.OutcomeFail
	if v.Solved {
		outcome = sink.OutcomeSuccess
	}
	record := c.buildRecord(problem, state, proposed, v.Reason, finalTry, true, outcome)
	c.persist(record)
	c.log.Info("problem %s: exhausted after %d tries, outcome %s", problem.ID, finalTry, outcome)
	return record, nil
}

// runPanel executes the strictly sequential panel pipeline and returns the
// boss synthesis input. Each stage consumes the previous stage's output,
// so there is nothing to parallelize.
func (c *Controller) runPanel(ctx context.Context, problem dataset.Problem, state *session.State, hint string) string {
	questions := c.stage(ctx, agent.RoleQuestioner, questionerInput(problem, state.Questions()))
	state.AddQuestions(questions)

	answers := c.stage(ctx, agent.RoleAnswerer, answererInput(problem, questions))
	state.AddAnswers(answers)

	experiment := c.stage(ctx, agent.RoleExperimenter, experimenterInput(problem, questions, answers))
	state.AddExperiment(experiment)

	skepticism := c.stage(ctx, agent.RoleSkeptic, skepticInput(problem, questions, answers, experiment))
	state.AddSkepticism(skepticism)

	return synthesisInput(problem, hint, questions, answers, experiment, skepticism)
}

// stage calls one agent and converts a failure into empty output so a bad
// panel call degrades context quality without killing the try loop.
func (c *Controller) stage(ctx context.Context, role agent.Role, input string) string {
	out, err := c.caller.Call(ctx, role, input)
	if err != nil {
		c.log.Warn("agent %s failed: %v (continuing with empty output)", role, err)
		return ""
	}
	return out
}

func (c *Controller) buildRecord(problem dataset.Problem, state *session.State, proposed, reason string, try int, hintUsed bool, outcome string) sink.Record {
	return sink.Record{
		ProblemID:    problem.ID,
		ProblemText:  problem.Text,
		Solution:     problem.Solution,
		HintUsed:     hintUsed && problem.Hint != "",
		Questions:    state.QuestionsJSON(),
		Answers:      state.AnswersJSON(),
		BossOpinions: state.ProposalsJSON(),
		Experiments:  state.ExperimentsJSON(),
		Skepticism:   state.SkepticismJSON(),
		QAReasons:    state.QAReasonsJSON(),
		HintNotices:  state.HintNoticesJSON(),
		BossAnswer:   proposed,
		QAReason:     reason,
		TryNumber:    try,
		TriesData:    state.TriesJSON(),
		Outcome:      outcome,
		Timestamp:    c.now(),
	}
}

// persist appends one record to the sink. A write failure loses that row
// but must not abort the remaining problems, so it is only logged.
func (c *Controller) persist(record sink.Record) {
	if err := c.out.Append(record); err != nil {
		c.log.Error("persist outcome for %s: %v", record.ProblemID, err)
		return
	}
	c.log.Info("saved result for %s (try %d, %s)", record.ProblemID, record.TryNumber, record.Outcome)
}

package solver

import (
	"context"
	"strings"

	"github.com/saffi955/INNOVAI/internal/agent"
	"github.com/saffi955/INNOVAI/internal/dataset"
	"github.com/saffi955/INNOVAI/internal/logbook"
	"github.com/saffi955/INNOVAI/internal/verdict"
)

// Judge decides whether a proposed answer matches the hidden solution.
type Judge interface {
	Judge(ctx context.Context, problem dataset.Problem, proposed string) verdict.Verdict
}

// AgentJudge asks the QA agent and parses its free-text response with a
// strategy chain. Every failure mode (empty proposal, failed call,
// unparseable response) yields a not-solved verdict. Never assume success.
type AgentJudge struct {
	caller     agent.Caller
	strategies verdict.Strategy
	log        *logbook.Logbook
}

// NewAgentJudge wires a judge over the given caller and parse strategies.
// A nil logbook is fine; entries are simply dropped.
func NewAgentJudge(caller agent.Caller, strategies verdict.Strategy, book *logbook.Logbook) *AgentJudge {
	if strategies == nil {
		strategies = verdict.Default()
	}
	return &AgentJudge{caller: caller, strategies: strategies, log: book}
}

// Judge implements Judge.
func (j *AgentJudge) Judge(ctx context.Context, problem dataset.Problem, proposed string) verdict.Verdict {
	if strings.TrimSpace(proposed) == "" {
		return verdict.Verdict{Solved: false, Reason: "no answer proposed"}
	}
	raw, err := j.caller.Call(ctx, agent.RoleQA, qaInput(problem, proposed))
	if err != nil {
		j.log.Warn("qa call for %s failed: %v", problem.ID, err)
		return verdict.Verdict{Solved: false, Reason: "qa agent call failed"}
	}
	v, err := j.strategies.Parse(raw)
	if err != nil {
		j.log.Warn("qa response for %s unparseable: %s", problem.ID, firstLine(raw))
		return verdict.Verdict{Solved: false, Reason: "failed to parse qa response"}
	}
	return v
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}

package solver

import (
	"encoding/json"
	"fmt"

	"github.com/saffi955/INNOVAI/internal/dataset"
	"github.com/saffi955/INNOVAI/internal/session"
)

// hintSentinel keeps the boss prompt shape stable across tries: below the
// hint threshold the hint line carries this literal instead of being omitted.
const hintSentinel = "None"

const answerFormat = "Output your answer in format: 'Proposed Answer: [solution]'."

func bossHint(problem dataset.Problem, hintActive bool) string {
	if hintActive && problem.Hint != "" {
		return problem.Hint
	}
	return hintSentinel
}

func directInput(problem dataset.Problem, hint string) string {
	if hint != hintSentinel {
		return fmt.Sprintf("Problem: %s\nHint: %s\nSolve this directly. %s", problem.Text, hint, answerFormat)
	}
	return fmt.Sprintf("Problem: %s\nSolve this directly. %s", problem.Text, answerFormat)
}

func questionerInput(problem dataset.Problem, priorQuestions []string) string {
	return fmt.Sprintf(
		"Problem: %s\nPrevious Questions: %s\nGenerate diverse questions about what is still unknown. Do not repeat previous questions.",
		problem.Text, encodeList(priorQuestions))
}

func answererInput(problem dataset.Problem, questions string) string {
	return fmt.Sprintf("Problem: %s\nQuestions to Answer: %s", problem.Text, questions)
}

func experimenterInput(problem dataset.Problem, questions, answers string) string {
	return fmt.Sprintf(
		"Problem: %s\nCurrent Q&A: %s\n%s\nSimulate outcomes, test hypotheses, and validate approaches.",
		problem.Text, questions, answers)
}

func skepticInput(problem dataset.Problem, questions, answers, experiment string) string {
	return fmt.Sprintf(
		"Problem: %s\nQ&A: %s\n%s\nExperiment: %s\nChallenge assumptions, identify logical fallacies, and stress-test these approaches.",
		problem.Text, questions, answers, experiment)
}

func synthesisInput(problem dataset.Problem, hint, questions, answers, experiment, skepticism string) string {
	return fmt.Sprintf(
		"Problem: %s\nHint: %s\nRecent Questions: %s\nRecent Answers: %s\nRecent Experiments: %s\nRecent Skepticism: %s\nSynthesize all this and provide the final answer. %s",
		problem.Text, hint, questions, answers, experiment, skepticism, answerFormat)
}

func hailMaryInput(problem dataset.Problem, state *session.State) string {
	hint := hintSentinel
	if problem.Hint != "" {
		hint = problem.Hint
	}
	return fmt.Sprintf(
		"Problem: %s\nHint: %s\n%s\nPrevious attempts failed. Re-read all data, ignore previous wrong conclusions, and try one last time. %s",
		problem.Text, hint, state.Transcript(), answerFormat)
}

func qaInput(problem dataset.Problem, proposed string) string {
	return fmt.Sprintf(
		"Problem: %s\nProposed Answer: %s\nHidden Correct Solution: %s\nCompare these. If they match in meaning, return 'thumbs up'. If not, 'thumbs down'. Respond with a JSON object {\"verdict\": \"...\", \"reason\": \"...\"}.",
		problem.Text, proposed, problem.Solution)
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

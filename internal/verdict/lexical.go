package verdict

import (
	"fmt"
	"strings"
)

// Rule describes a lexical verdict scan: a verdict is declared solved when
// any success marker appears in the response, not solved when any failure
// marker does, and unparseable when neither does. The reason is the text
// after the first occurrence of the separator, or the whole response.
type Rule struct {
	Name            string   `yaml:"name"`
	SuccessMarkers  []string `yaml:"success_markers"`
	FailureMarkers  []string `yaml:"failure_markers"`
	ReasonSeparator string   `yaml:"reason_separator"`
}

// ThumbsRule is the built-in rule matching the QA agent's instructed
// "thumbs up"/"thumbs down" vocabulary.
func ThumbsRule() Rule {
	return Rule{
		Name:            "thumbs",
		SuccessMarkers:  []string{"thumbs up"},
		FailureMarkers:  []string{"thumbs down"},
		ReasonSeparator: ":",
	}
}

// Normalized returns a copy with trimmed, lowercased markers and defaults
// applied.
func (r Rule) Normalized() Rule {
	clone := Rule{
		Name:            strings.TrimSpace(r.Name),
		ReasonSeparator: r.ReasonSeparator,
	}
	if clone.ReasonSeparator == "" {
		clone.ReasonSeparator = ":"
	}
	clone.SuccessMarkers = normalizeMarkers(r.SuccessMarkers)
	clone.FailureMarkers = normalizeMarkers(r.FailureMarkers)
	return clone
}

// Validate ensures the rule can actually classify a response.
func (r Rule) Validate() error {
	normalized := r.Normalized()
	if normalized.Name == "" {
		return fmt.Errorf("verdict: rule name is required")
	}
	if len(normalized.SuccessMarkers) == 0 {
		return fmt.Errorf("verdict: rule %s needs at least one success marker", normalized.Name)
	}
	return nil
}

func normalizeMarkers(markers []string) []string {
	var out []string
	for _, m := range markers {
		trimmed := strings.ToLower(strings.TrimSpace(m))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// Lexical applies a Rule to a raw response.
type Lexical struct {
	rule Rule
}

// NewLexical builds a lexical strategy from the given rule. The rule is
// normalized; callers should Validate it first.
func NewLexical(rule Rule) Lexical {
	return Lexical{rule: rule.Normalized()}
}

// Name implements Strategy.
func (l Lexical) Name() string { return l.rule.Name }

// Parse implements Strategy.
func (l Lexical) Parse(raw string) (Verdict, error) {
	lower := strings.ToLower(raw)
	solved := false
	switch {
	case containsAny(lower, l.rule.SuccessMarkers):
		solved = true
	case containsAny(lower, l.rule.FailureMarkers):
		solved = false
	default:
		return Verdict{}, ErrUnparseable
	}
	reason := strings.TrimSpace(raw)
	if idx := strings.Index(raw, l.rule.ReasonSeparator); idx >= 0 {
		if tail := strings.TrimSpace(raw[idx+len(l.rule.ReasonSeparator):]); tail != "" {
			reason = tail
		}
	}
	if reason == "" {
		reason = "no reason provided"
	}
	return Verdict{Solved: solved, Reason: reason}, nil
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

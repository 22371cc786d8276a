package verdict

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonBlock matches the first braced object in a response, including
// objects spread across multiple lines.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// JSON extracts the first JSON object from the response and reads the
// verdict and reason fields. Models frequently wrap the object in prose
// or code fences, so both are stripped before decoding.
type JSON struct{}

// Name implements Strategy.
func (JSON) Name() string { return "json" }

// Parse implements Strategy.
func (JSON) Parse(raw string) (Verdict, error) {
	text := StripCodeFences(strings.TrimSpace(raw))
	block := jsonBlock.FindString(text)
	if block == "" {
		block = text
	}
	var payload struct {
		Verdict string `json:"verdict"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return Verdict{}, ErrUnparseable
	}
	normalized := strings.ToLower(strings.TrimSpace(payload.Verdict))
	if normalized == "" {
		return Verdict{}, ErrUnparseable
	}
	reason := strings.TrimSpace(payload.Reason)
	if reason == "" {
		reason = "no reason provided"
	}
	return Verdict{Solved: normalized == "thumbs up", Reason: reason}, nil
}

// StripCodeFences removes a surrounding markdown code fence, with or
// without a language tag.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		if first != "" && !strings.ContainsAny(first, "{}") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

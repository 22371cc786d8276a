// Package verdict turns free-text QA agent output into a solved/not-solved
// judgment. Agent output is not guaranteed to be well-formed, so parsing is
// modeled as a chain of strategies; a response no strategy understands is
// reported as unparseable and the caller decides policy (the solver always
// treats it as not solved).
package verdict

import (
	"errors"
	"strings"
)

// ErrUnparseable signals that a strategy could not extract a judgment
// from the raw response.
var ErrUnparseable = errors.New("verdict: unparseable response")

// Verdict is a parsed QA judgment.
type Verdict struct {
	Solved bool
	Reason string
}

// Strategy extracts a verdict from a raw agent response.
type Strategy interface {
	Name() string
	Parse(raw string) (Verdict, error)
}

// Chain tries each strategy in order and returns the first parse that
// succeeds. It fails with ErrUnparseable only when every strategy does.
type Chain []Strategy

// Parse implements Strategy over the whole chain.
func (c Chain) Parse(raw string) (Verdict, error) {
	for _, s := range c {
		if s == nil {
			continue
		}
		v, err := s.Parse(raw)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrUnparseable) {
			return Verdict{}, err
		}
	}
	return Verdict{}, ErrUnparseable
}

// Name implements Strategy.
func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, s := range c {
		if s != nil {
			names = append(names, s.Name())
		}
	}
	return strings.Join(names, ",")
}

// Default returns the strategy chain used when no plugins are configured:
// strict JSON extraction first, then the lexical thumbs-up scan.
func Default() Chain {
	return Chain{JSON{}, NewLexical(ThumbsRule())}
}

package plugins

import (
	"os"
	"path/filepath"
	"testing"
)

const rulePluginSource = `package main

func VerdictRules() ([]map[string]any, error) {
	return []map[string]any{
		{
			"name":             "pass-fail",
			"success_markers":  []string{"PASS", "looks correct"},
			"failure_markers":  []string{"FAIL"},
			"reason_separator": "because",
		},
	}, nil
}`

func TestLoadVerdictRuleDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pass-fail.go"), []byte(rulePluginSource), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	rules, err := LoadVerdictRuleDir(dir)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	rule := rules[0].Rule
	if rule.Name != "pass-fail" {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	// Markers come back lowercased by normalization.
	if len(rule.SuccessMarkers) != 2 || rule.SuccessMarkers[0] != "pass" {
		t.Fatalf("success markers = %v", rule.SuccessMarkers)
	}
	if rule.ReasonSeparator != "because" {
		t.Fatalf("separator = %q", rule.ReasonSeparator)
	}

	strategies := Strategies(rules)
	if len(strategies) != 1 {
		t.Fatalf("strategies = %d, want 1", len(strategies))
	}
	v, err := strategies[0].Parse("Verdict: PASS because the trace matches")
	if err != nil {
		t.Fatalf("parse with loaded rule: %v", err)
	}
	if !v.Solved || v.Reason != "the trace matches" {
		t.Fatalf("verdict = %+v", v)
	}
}

func TestLoadVerdictRuleDirMissingFunc(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatalf("write broken plugin: %v", err)
	}
	if _, err := LoadVerdictRuleDir(dir); err == nil {
		t.Fatalf("expected error for missing VerdictRules function")
	}
}

func TestLoadVerdictRuleDirRejectsInvalidRule(t *testing.T) {
	dir := t.TempDir()
	src := `package main

func VerdictRules() ([]map[string]any, error) {
	return []map[string]any{{"name": "nameless"}}, nil
}`
	if err := os.WriteFile(filepath.Join(dir, "invalid.go"), []byte(src), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	if _, err := LoadVerdictRuleDir(dir); err == nil {
		t.Fatalf("expected validation error for rule without success markers")
	}
}

func TestLoadVerdictRuleDirMissingDir(t *testing.T) {
	rules, err := LoadVerdictRuleDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if rules != nil {
		t.Fatalf("rules = %v, want nil", rules)
	}
}

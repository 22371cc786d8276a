// Package plugins loads verdict rules from interpreted Go files. A plugin
// file declares a VerdictRules() function returning rule maps; each map is
// normalized through YAML into a verdict.Rule and validated before use.
package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"

	"github.com/saffi955/INNOVAI/internal/verdict"
)

const ruleFuncName = "VerdictRules"

// RuleFile is one validated rule together with where it came from.
type RuleFile struct {
	Rule verdict.Rule
	Path string
}

// LoadVerdictRuleDir evaluates every .go file in dir and collects the rules
// declared via VerdictRules(). A missing or empty dir yields no rules.
func LoadVerdictRuleDir(dir string) ([]RuleFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var rules []RuleFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		fileRules, err := loadVerdictRuleFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}
	if len(rules) == 0 {
		return nil, nil
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Path < rules[j].Path })
	return rules, nil
}

// Strategies converts loaded rule files into parse strategies in path order.
func Strategies(files []RuleFile) []verdict.Strategy {
	strategies := make([]verdict.Strategy, 0, len(files))
	for _, file := range files {
		strategies = append(strategies, verdict.NewLexical(file.Rule))
	}
	return strategies
}

func loadVerdictRuleFile(path string) ([]RuleFile, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(ruleFuncName)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s must define %s() ([]map[string]any, error): %w", path, ruleFuncName, err)
	}
	raw, callErr := invokeRuleFunc(fnValue)
	if callErr != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, callErr)
	}
	files := make([]RuleFile, 0, len(raw))
	for idx, entry := range raw {
		payload, err := yaml.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("plugin: %s rule[%d]: %w", path, idx, err)
		}
		var rule verdict.Rule
		if err := yaml.Unmarshal(payload, &rule); err != nil {
			return nil, fmt.Errorf("plugin: %s rule[%d]: %w", path, idx, err)
		}
		rule = rule.Normalized()
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("plugin: %s rule[%d]: %w", path, idx, err)
		}
		files = append(files, RuleFile{Rule: rule, Path: fmt.Sprintf("%s#%d", path, idx+1)})
	}
	return files, nil
}

func invokeRuleFunc(value reflect.Value) ([]map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", ruleFuncName)
	}
	fn := value
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", ruleFuncName)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", ruleFuncName)
	}
	rulesVal := results[0]
	if len(results) == 2 {
		if !results[1].IsNil() {
			if e, ok := results[1].Interface().(error); ok && e != nil {
				return nil, e
			}
			return nil, fmt.Errorf("%s returned non-error second value", ruleFuncName)
		}
	}
	rules, ok := rulesVal.Interface().([]map[string]any)
	if ok {
		return rules, nil
	}
	if rulesVal.Kind() == reflect.Slice {
		result := make([]map[string]any, rulesVal.Len())
		for i := 0; i < rulesVal.Len(); i++ {
			entry := rulesVal.Index(i).Interface()
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] is not map[string]any", ruleFuncName, i)
			}
			result[i] = m
		}
		return result, nil
	}
	return nil, fmt.Errorf("%s must return []map[string]any", ruleFuncName)
}

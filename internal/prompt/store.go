// Package prompt loads the agent system instructions from the
// agent_prompts.json configuration file.
package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/saffi955/INNOVAI/internal/agent"
)

// Store maps agent roles to their system-style instruction text.
type Store struct {
	prompts map[agent.Role]string
}

// Load reads the prompt file. A missing file or a missing required role
// is a startup error; the caller is expected to abort.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompt: read %s: %w", path, err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("prompt: parse %s: %w", path, err)
	}
	prompts := make(map[agent.Role]string, len(raw))
	for name, text := range raw {
		prompts[agent.Role(strings.ToLower(strings.TrimSpace(name)))] = strings.TrimSpace(text)
	}
	store := &Store{prompts: prompts}
	if missing := store.missingRoles(); len(missing) > 0 {
		return nil, fmt.Errorf("prompt: %s is missing required agents: %s", path, strings.Join(missing, ", "))
	}
	return store, nil
}

// System implements agent.SystemPrompts.
func (s *Store) System(role agent.Role) (string, bool) {
	text, ok := s.prompts[role]
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

func (s *Store) missingRoles() []string {
	var missing []string
	for _, role := range agent.Roles() {
		if text, ok := s.prompts[role]; !ok || text == "" {
			missing = append(missing, string(role))
		}
	}
	sort.Strings(missing)
	return missing
}

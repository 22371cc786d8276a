// Package agent abstracts the specialist agents behind a single caller
// interface. Every agent is the same underlying model with a different
// system instruction; the role selects the instruction.
package agent

import "context"

// Role identifies one of the specialist agents.
type Role string

const (
	RoleBoss         Role = "boss"
	RoleQuestioner   Role = "questioner"
	RoleAnswerer     Role = "answerer"
	RoleExperimenter Role = "experimenter"
	RoleSkeptic      Role = "skeptic"
	RoleQA           Role = "qa"
)

// Roles lists every role the solver requires, in pipeline order.
func Roles() []Role {
	return []Role{RoleBoss, RoleQuestioner, RoleAnswerer, RoleExperimenter, RoleSkeptic, RoleQA}
}

// Caller turns (role, context text) into a model response. A failed call
// returns an error; the solver converts failures into degraded empty
// context rather than aborting the try loop.
type Caller interface {
	Call(ctx context.Context, role Role, input string) (string, error)
}

// SystemPrompts supplies the per-role system instruction.
type SystemPrompts interface {
	System(role Role) (string, bool)
}

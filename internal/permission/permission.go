// Package permission implements the confirmation gate that every proposed
// action passes before it may run.
package permission

import (
	"context"

	"shellmind/internal/security"
)

// State is where an action stands in the confirmation flow.
type State int

const (
	// StateProposed is the entry state of every action.
	StateProposed State = iota
	// StateConfirmed allows a single execution.
	StateConfirmed
	// StateAlwaysAllowed allows execution and has persisted the command.
	StateAlwaysAllowed
	// StateDenied blocks execution.
	StateDenied
)

func (s State) String() string {
	switch s {
	case StateProposed:
		return "proposed"
	case StateConfirmed:
		return "confirmed"
	case StateAlwaysAllowed:
		return "always_allowed"
	case StateDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Allowed reports whether s permits execution.
func (s State) Allowed() bool {
	return s == StateConfirmed || s == StateAlwaysAllowed
}

// Decision is the user's answer to a shell command prompt.
type Decision int

const (
	// DecisionRunOnce runs the command this time only.
	DecisionRunOnce Decision = iota
	// DecisionAlwaysAllow runs the command and adds it to the allow-list.
	DecisionAlwaysAllow
	// DecisionDeny declines the command.
	DecisionDeny
)

func (d Decision) String() string {
	switch d {
	case DecisionRunOnce:
		return "run_once"
	case DecisionAlwaysAllow:
		return "always_allow"
	case DecisionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// Prompter asks the user to approve actions.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string) (bool, error)
	// Choose offers run once, always allow or deny for a shell command.
	Choose(ctx context.Context, command string, risk security.Assessment) (Decision, error)
}

// AllowList is the persisted set of approved command strings.
type AllowList interface {
	IsCommandAllowed(command string) bool
	// AddAllowedCommand adds command and reports whether it was new.
	AddAllowedCommand(command string) bool
	Save() error
}

// ToolPolicy is the part of a tool the gate consults.
type ToolPolicy interface {
	Name() string
	ConfirmationMessage(args map[string]any) (string, bool)
}

// Response is the outcome of a gate check.
type Response struct {
	State  State
	Reason string
	// Risk is set for shell commands.
	Risk security.Assessment
	// Prompted is true when the user was asked.
	Prompted bool
	// Err carries a prompt or persistence failure that led to denial.
	Err error
}

// Allowed reports whether execution may proceed.
func (r Response) Allowed() bool {
	return r.State.Allowed()
}

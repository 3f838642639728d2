package permission

import (
	"context"
	"fmt"

	"shellmind/internal/logging"
	"shellmind/internal/security"
)

// Gate decides whether proposed tool calls and shell commands may run.
type Gate struct {
	prompter  Prompter
	allowList AllowList
	risk      *security.RiskAssessor

	// autoApprove lets exact allow-list matches skip the prompt.
	autoApprove bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithAutoApprove makes commands already on the allow-list run without
// prompting.
func WithAutoApprove(enabled bool) Option {
	return func(g *Gate) { g.autoApprove = enabled }
}

// NewGate creates a gate.
func NewGate(prompter Prompter, allowList AllowList, opts ...Option) *Gate {
	g := &Gate{
		prompter:  prompter,
		allowList: allowList,
		risk:      security.NewRiskAssessor(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckTool gates a tool invocation. Tools without a confirmation message
// are confirmed without prompting.
func (g *Gate) CheckTool(ctx context.Context, tool ToolPolicy, args map[string]any) Response {
	message, needsConfirm := tool.ConfirmationMessage(args)
	if !needsConfirm {
		return Response{State: StateConfirmed, Reason: "auto-approved"}
	}
	if g.prompter == nil {
		return Response{State: StateDenied, Reason: "no prompter available"}
	}

	ok, err := g.prompter.Confirm(ctx, message)
	switch {
	case err != nil:
		logging.Debug("confirmation prompt failed", "tool", tool.Name(), "error", err)
		return Response{State: StateDenied, Reason: "prompt failed", Prompted: true, Err: err}
	case !ok:
		return Response{State: StateDenied, Reason: "denied by user", Prompted: true}
	}
	return Response{State: StateConfirmed, Reason: "confirmed by user", Prompted: true}
}

// CheckCommand gates a shell command with a three-way prompt. Choosing
// always allow saves the command to the allow-list before returning.
func (g *Gate) CheckCommand(ctx context.Context, command string) Response {
	risk := g.risk.Assess(command)

	if g.autoApprove && g.allowList != nil && g.allowList.IsCommandAllowed(command) {
		return Response{State: StateAlwaysAllowed, Reason: "on allow-list", Risk: risk}
	}
	if g.prompter == nil {
		return Response{State: StateDenied, Reason: "no prompter available", Risk: risk}
	}

	decision, err := g.prompter.Choose(ctx, command, risk)
	if err != nil {
		logging.Debug("command prompt failed", "error", err)
		return Response{State: StateDenied, Reason: "prompt failed", Risk: risk, Prompted: true, Err: err}
	}

	switch decision {
	case DecisionRunOnce:
		return Response{State: StateConfirmed, Reason: "run once", Risk: risk, Prompted: true}

	case DecisionAlwaysAllow:
		if g.allowList == nil {
			return Response{State: StateDenied, Reason: "allow-list unavailable", Risk: risk, Prompted: true}
		}
		if g.allowList.AddAllowedCommand(command) {
			if err := g.allowList.Save(); err != nil {
				return Response{
					State:    StateDenied,
					Reason:   "failed to save allow-list",
					Risk:     risk,
					Prompted: true,
					Err:      fmt.Errorf("failed to save allow-list: %w", err),
				}
			}
			logging.Info("command added to allow-list", "risk", risk.Level.String())
		}
		return Response{State: StateAlwaysAllowed, Reason: "always allowed", Risk: risk, Prompted: true}

	case DecisionDeny:
		return Response{State: StateDenied, Reason: "denied by user", Risk: risk, Prompted: true}

	default:
		return Response{State: StateDenied, Reason: "unknown decision", Risk: risk, Prompted: true}
	}
}

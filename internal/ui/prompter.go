package ui

import (
	"context"
	"errors"
	"io"
	"strings"

	"shellmind/internal/permission"
	"shellmind/internal/security"
)

// Confirm asks a yes/no question. End of input counts as no.
func (c *Console) Confirm(ctx context.Context, message string) (bool, error) {
	c.println(c.styles.Warning.Render(MessageIcons["warning"] + " " + message))
	answer, err := c.readLine(ctx, "[y/N] ", false)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Choose offers run once, always allow or deny for a shell command. It
// repeats until it gets a valid answer. End of input counts as deny.
func (c *Console) Choose(ctx context.Context, command string, risk security.Assessment) (permission.Decision, error) {
	shown := command
	if c.highlighter != nil {
		shown = c.highlighter.Command(command)
	}
	c.println(c.styles.Proposal.Render("→ ") + shown)

	if risk.Level > security.RiskLow {
		c.println(c.styles.Warning.Render(MessageIcons["warning"] + " " + strings.ToUpper(risk.Level.String()) + " risk: " + risk.Reason))
	}

	for {
		answer, err := c.readLine(ctx, "Run once [r], always allow [a], deny [d]: ", false)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return permission.DecisionDeny, nil
			}
			return permission.DecisionDeny, err
		}
		if decision, ok := parseDecision(answer); ok {
			return decision, nil
		}
		c.Status("please answer r, a or d")
	}
}

func parseDecision(answer string) (permission.Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "r", "run", "y", "yes":
		return permission.DecisionRunOnce, true
	case "a", "always":
		return permission.DecisionAlwaysAllow, true
	case "d", "deny", "n", "no":
		return permission.DecisionDeny, true
	default:
		return permission.DecisionDeny, false
	}
}

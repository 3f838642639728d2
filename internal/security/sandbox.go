package security

import (
	"os/exec"

	"shellmind/internal/logging"
)

// Sandbox prepares a shell command for isolated execution.
type Sandbox interface {
	// Name identifies the sandbox in logs and audit entries.
	Name() string
	// Prepare adjusts cmd before it is started.
	Prepare(cmd *exec.Cmd) error
}

// NoopSandbox runs commands unchanged.
type NoopSandbox struct{}

// Name implements Sandbox.
func (NoopSandbox) Name() string { return "none" }

// Prepare implements Sandbox.
func (NoopSandbox) Prepare(*exec.Cmd) error { return nil }

// NewSandbox returns the sandbox for the given setting. Isolation is not
// implemented, so an enabled sandbox still runs commands as-is.
func NewSandbox(enabled bool) Sandbox {
	if enabled {
		logging.Warn("shell sandbox requested but not available, commands run unisolated")
	}
	return NoopSandbox{}
}

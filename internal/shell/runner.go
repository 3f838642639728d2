package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"shellmind/internal/logging"
	"shellmind/internal/security"
)

// DefaultMaxOutput caps captured output when Options.MaxOutput is zero.
const DefaultMaxOutput = 30000

// Options configures a Runner.
type Options struct {
	// Timeout for a single command. Zero means no timeout.
	Timeout time.Duration
	// MaxOutput caps the combined captured output in bytes.
	MaxOutput int
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Sandbox prepares each command before it starts.
	Sandbox security.Sandbox
}

// Result is the outcome of running one command line.
type Result struct {
	Command   string
	Stdout    string
	Stderr    string
	ExitCode  int
	Duration  time.Duration
	Cancelled bool
	TimedOut  bool
	Truncated bool
}

// Success reports whether the command ran to completion with exit code 0.
func (r *Result) Success() bool {
	return !r.Cancelled && !r.TimedOut && r.ExitCode == 0
}

// Output renders stdout followed by stderr, the way it is shown to the user.
func (r *Result) Output() string {
	var out strings.Builder
	out.WriteString(r.Stdout)
	if r.Stderr != "" {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteString("\n")
		}
		out.WriteString("STDERR:\n")
		out.WriteString(r.Stderr)
	}
	if r.Truncated {
		out.WriteString("\n... (output truncated)")
	}
	return out.String()
}

// Runner executes command lines with the platform interpreter.
type Runner struct {
	opts Options
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	if opts.MaxOutput <= 0 {
		opts.MaxOutput = DefaultMaxOutput
	}
	if opts.Sandbox == nil {
		opts.Sandbox = security.NoopSandbox{}
	}
	return &Runner{opts: opts}
}

// Interpreter returns the interpreter and flag for the current platform.
func Interpreter() (string, string) {
	if runtime.GOOS == "windows" {
		return "cmd", "/C"
	}
	return "sh", "-c"
}

// Run executes command and waits for it. A non-nil error means the command
// could not be started; exit status and cancellation are reported in Result.
// Cancelling ctx kills the whole process group.
func (r *Runner) Run(ctx context.Context, command string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return &Result{Command: command, Cancelled: true, ExitCode: -1}, nil
	}

	execCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	name, flag := Interpreter()
	cmd := exec.CommandContext(execCtx, name, flag, command)
	cmd.Dir = r.opts.Dir
	setProcAttr(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}
	// Children holding the pipes open must not block Wait forever.
	cmd.WaitDelay = 2 * time.Second

	stdout := &limitedBuffer{limit: r.opts.MaxOutput}
	stderr := &limitedBuffer{limit: r.opts.MaxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := r.opts.Sandbox.Prepare(cmd); err != nil {
		return nil, fmt.Errorf("sandbox %s: %w", r.opts.Sandbox.Name(), err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}
	logging.Debug("shell command started", "command", command, "pid", cmd.Process.Pid)

	waitErr := cmd.Wait()

	res := &Result{
		Command:   command,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  time.Since(start),
		Truncated: stdout.truncated || stderr.truncated,
	}

	switch {
	case ctx.Err() != nil:
		res.Cancelled = true
		res.ExitCode = -1
	case execCtx.Err() != nil:
		res.TimedOut = true
		res.ExitCode = -1
	case errors.Is(waitErr, exec.ErrWaitDelay):
		// Exited, but a background child kept the pipes open.
		res.ExitCode = cmd.ProcessState.ExitCode()
	case waitErr != nil:
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("command failed: %w", waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	logging.Debug("shell command finished",
		"command", command,
		"exit_code", res.ExitCode,
		"cancelled", res.Cancelled,
		"duration", res.Duration)

	return res, nil
}

// limitedBuffer keeps the first limit bytes written and drops the rest.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - b.buf.Len()
	if remaining <= 0 {
		b.truncated = b.truncated || len(p) > 0
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}

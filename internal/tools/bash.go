package tools

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"shellmind/internal/shell"
)

// CommandRunner runs one command line through the platform shell.
type CommandRunner interface {
	Run(ctx context.Context, command string) (*shell.Result, error)
}

// RunCommand runs command and folds every outcome into a ToolResult:
// a non-zero exit, a timeout and cancellation are all failures.
func RunCommand(ctx context.Context, runner CommandRunner, command string) ToolResult {
	res, err := runner.Run(ctx, command)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("Failed to execute command: %s", err))
	}

	data := map[string]any{
		"exit_code": res.ExitCode,
		"duration":  res.Duration.String(),
	}

	switch {
	case res.Cancelled:
		return ToolResult{Error: "command cancelled", Content: res.Output(), Data: data}
	case res.TimedOut:
		return ToolResult{Error: fmt.Sprintf("command timed out after %s", res.Duration.Round(time.Millisecond)), Content: res.Output(), Data: data}
	case res.ExitCode != 0:
		return ToolResult{Error: fmt.Sprintf("Command failed with exit code %d", res.ExitCode), Content: res.Output(), Data: data}
	}

	out := res.Output()
	if out == "" {
		out = "(no output)"
	}
	return NewSuccessResultWithData(out, data)
}

// ShellTool executes a shell command on behalf of the model.
type ShellTool struct {
	runner CommandRunner
}

// NewShellTool creates a new ShellTool.
func NewShellTool(runner CommandRunner) *ShellTool {
	return &ShellTool{runner: runner}
}

func (t *ShellTool) Name() string        { return "run_shell_command" }
func (t *ShellTool) DisplayName() string { return "Run Shell Command" }

func (t *ShellTool) Description() string {
	return "Executes a given shell command."
}

func (t *ShellTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"command": {
					Type:        genai.TypeString,
					Description: "The exact shell command to execute.",
				},
				"description": {
					Type:        genai.TypeString,
					Description: "Brief description of the command for the user. Be specific and concise.",
				},
			},
			Required: []string{"command"},
		},
	}
}

func (t *ShellTool) Validate(args map[string]any) error {
	if err := requireString(args, "command"); err != nil {
		return err
	}
	if cmd, _ := GetString(args, "command"); cmd == "" {
		return NewValidationError("command", "must not be empty")
	}
	return optionalString(args, "description")
}

func (t *ShellTool) Describe(args map[string]any) string {
	return fmt.Sprintf("Run shell command: '%s' (Description: %s)",
		GetStringDefault(args, "command", "unknown command"),
		GetStringDefault(args, "description", "no description"))
}

func (t *ShellTool) ConfirmationMessage(args map[string]any) (string, bool) {
	command := GetStringDefault(args, "command", "unknown command")
	return fmt.Sprintf("This will execute the command: '%s'. Are you sure?", command), true
}

type shellArgs struct {
	Command     string `mapstructure:"command"`
	Description string `mapstructure:"description"`
}

func (t *ShellTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[shellArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	if req.Command == "" {
		return NewErrorResult("Missing 'command' parameter for run_shell_command")
	}
	return RunCommand(ctx, t.runner, req.Command)
}

package tools

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"shellmind/internal/fileutil"
)

// maxReadBytes caps how much of a single file read_file returns.
const maxReadBytes = 1 << 20

// ReadFileTool reads a text file.
type ReadFileTool struct {
	workDir string
}

// NewReadFileTool creates a new ReadFileTool.
func NewReadFileTool(workDir string) *ReadFileTool {
	return &ReadFileTool{workDir: workDir}
}

func (t *ReadFileTool) Name() string        { return "read_file" }
func (t *ReadFileTool) DisplayName() string { return "Read File" }

func (t *ReadFileTool) Description() string {
	return "Reads the content of a specified file."
}

func (t *ReadFileTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "The path to the file to read.",
				},
			},
			Required: []string{"path"},
		},
	}
}

func (t *ReadFileTool) Validate(args map[string]any) error {
	return requireString(args, "path")
}

func (t *ReadFileTool) Describe(args map[string]any) string {
	return "Read file: " + GetStringDefault(args, "path", "unknown path")
}

func (t *ReadFileTool) ConfirmationMessage(map[string]any) (string, bool) {
	return "", false
}

type readFileArgs struct {
	Path string `mapstructure:"path"`
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[readFileArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	if ctx.Err() != nil {
		return cancelledResult("read_file")
	}

	path := resolvePath(t.workDir, req.Path)
	info, err := os.Stat(path)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("Failed to read file '%s': %s", req.Path, err))
	}
	if info.IsDir() {
		return NewErrorResult(fmt.Sprintf("Failed to read file '%s': is a directory", req.Path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("Failed to read file '%s': %s", req.Path, err))
	}
	if fileutil.IsBinary(data) {
		return NewErrorResult(fmt.Sprintf("Failed to read file '%s': binary content", req.Path))
	}

	content := string(data)
	if len(data) > maxReadBytes {
		content = string(data[:maxReadBytes]) + fmt.Sprintf("\n... (truncated: showing %d of %d bytes)", maxReadBytes, len(data))
	}
	return NewSuccessResult(content)
}

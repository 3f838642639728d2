package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/genai"

	"shellmind/internal/fileutil"
)

// WriteFileTool writes content to a file, replacing it.
type WriteFileTool struct {
	workDir string
}

// NewWriteFileTool creates a new WriteFileTool.
func NewWriteFileTool(workDir string) *WriteFileTool {
	return &WriteFileTool{workDir: workDir}
}

func (t *WriteFileTool) Name() string        { return "write_file" }
func (t *WriteFileTool) DisplayName() string { return "Write File" }

func (t *WriteFileTool) Description() string {
	return "Writes content to a specified file."
}

func (t *WriteFileTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "The path to the file to write.",
				},
				"content": {
					Type:        genai.TypeString,
					Description: "The content to write to the file.",
				},
			},
			Required: []string{"path", "content"},
		},
	}
}

func (t *WriteFileTool) Validate(args map[string]any) error {
	if err := requireString(args, "path"); err != nil {
		return err
	}
	return requireString(args, "content")
}

func (t *WriteFileTool) Describe(args map[string]any) string {
	return "Write to file: " + GetStringDefault(args, "path", "unknown path")
}

func (t *WriteFileTool) ConfirmationMessage(map[string]any) (string, bool) {
	return "This will write content to a file. Are you sure?", true
}

type writeFileArgs struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[writeFileArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	if req.Path == "" {
		return NewErrorResult("Missing 'path' parameter for write_file")
	}
	if ctx.Err() != nil {
		return cancelledResult("write_file")
	}

	path := resolvePath(t.workDir, req.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return NewErrorResult(fmt.Sprintf("Failed to write to file '%s': %s", req.Path, err))
	}
	if err := fileutil.AtomicWriteString(path, req.Content, 0644); err != nil {
		return NewErrorResult(fmt.Sprintf("Failed to write to file '%s': %s", req.Path, err))
	}

	return NewSuccessResultWithData(
		fmt.Sprintf("Successfully wrote to file '%s'.", req.Path),
		map[string]any{"path": path, "bytes": len(req.Content)},
	)
}

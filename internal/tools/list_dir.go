package tools

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"google.golang.org/genai"
)

// ListDirTool lists the entries of a directory.
type ListDirTool struct {
	workDir string
}

// NewListDirTool creates a new ListDirTool.
func NewListDirTool(workDir string) *ListDirTool {
	return &ListDirTool{workDir: workDir}
}

func (t *ListDirTool) Name() string        { return "list_directory" }
func (t *ListDirTool) DisplayName() string { return "List Directory" }

func (t *ListDirTool) Description() string {
	return "Lists the contents of a specified directory."
}

func (t *ListDirTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "The path to the directory to list.",
				},
			},
			Required: []string{"path"},
		},
	}
}

func (t *ListDirTool) Validate(args map[string]any) error {
	return requireString(args, "path")
}

func (t *ListDirTool) Describe(args map[string]any) string {
	return "List contents of directory: " + GetStringDefault(args, "path", "current directory")
}

func (t *ListDirTool) ConfirmationMessage(map[string]any) (string, bool) {
	return "", false
}

type listDirArgs struct {
	Path string `mapstructure:"path"`
}

func (t *ListDirTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[listDirArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	if ctx.Err() != nil {
		return cancelledResult("list_directory")
	}

	entries, err := os.ReadDir(resolvePath(t.workDir, req.Path))
	if err != nil {
		return NewErrorResult(fmt.Sprintf("Failed to read directory '%s': %s", req.Path, err))
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return NewSuccessResultWithData(strings.Join(names, "\n"), names)
}

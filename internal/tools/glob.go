package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"google.golang.org/genai"
)

// maxGlobResults limits the number of paths glob returns.
const maxGlobResults = 1000

// GlobTool finds files matching a glob pattern.
type GlobTool struct {
	workDir string
}

// NewGlobTool creates a new GlobTool.
func NewGlobTool(workDir string) *GlobTool {
	return &GlobTool{workDir: workDir}
}

func (t *GlobTool) Name() string        { return "glob" }
func (t *GlobTool) DisplayName() string { return "Glob Search" }

func (t *GlobTool) Description() string {
	return "Finds files matching specific glob patterns."
}

func (t *GlobTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"pattern": {
					Type:        genai.TypeString,
					Description: "The glob pattern to match against (e.g., src/**/*.py, docs/*.md).",
				},
				"path": {
					Type:        genai.TypeString,
					Description: "Optional: The directory to search within. If omitted, searches the current directory.",
				},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *GlobTool) Validate(args map[string]any) error {
	if err := requireString(args, "pattern"); err != nil {
		return err
	}
	pattern, _ := GetString(args, "pattern")
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return NewValidationError("pattern", "invalid glob pattern")
	}
	return optionalString(args, "path")
}

func (t *GlobTool) Describe(args map[string]any) string {
	return fmt.Sprintf("Find files matching pattern %q in '%s'",
		GetStringDefault(args, "pattern", "unknown pattern"),
		GetStringDefault(args, "path", "current directory"))
}

func (t *GlobTool) ConfirmationMessage(map[string]any) (string, bool) {
	return "", false
}

type globArgs struct {
	Pattern string `mapstructure:"pattern"`
	Path    string `mapstructure:"path"`
}

func (t *GlobTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[globArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	if ctx.Err() != nil {
		return cancelledResult("glob")
	}

	root := resolvePath(t.workDir, req.Path)
	matches, err := doublestar.FilepathGlob(filepath.Join(root, req.Pattern))
	if err != nil {
		return NewErrorResult(fmt.Sprintf("Invalid glob pattern: %s", err))
	}
	if ctx.Err() != nil {
		return cancelledResult("glob")
	}

	if len(matches) == 0 {
		return NewSuccessResult("No matches found.")
	}

	results := make([]string, 0, len(matches))
	for _, m := range matches {
		results = append(results, displayPath(t.workDir, req.Path, m))
	}
	sort.Strings(results)

	truncated := false
	if len(results) > maxGlobResults {
		results = results[:maxGlobResults]
		truncated = true
	}

	out := strings.Join(results, "\n")
	if truncated {
		out += fmt.Sprintf("\n... (showing first %d of %d matches)", maxGlobResults, len(matches))
	}
	return NewSuccessResultWithData(out, results)
}

// displayPath shows match relative to workDir unless the caller asked for
// an absolute search root.
func displayPath(workDir, requested, match string) string {
	if filepath.IsAbs(requested) || workDir == "" {
		return match
	}
	if rel, err := filepath.Rel(workDir, match); err == nil {
		return rel
	}
	return match
}

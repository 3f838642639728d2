package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"google.golang.org/genai"

	"shellmind/internal/fileutil"
)

const (
	maxReadManyFiles = 200
	maxReadManyBytes = 2 << 20
)

// ReadManyFilesTool reads several files given as paths, directories or globs.
type ReadManyFilesTool struct {
	workDir  string
	maxFiles int
	maxBytes int
}

// NewReadManyFilesTool creates a new ReadManyFilesTool.
func NewReadManyFilesTool(workDir string) *ReadManyFilesTool {
	return &ReadManyFilesTool{
		workDir:  workDir,
		maxFiles: maxReadManyFiles,
		maxBytes: maxReadManyBytes,
	}
}

func (t *ReadManyFilesTool) Name() string        { return "read_many_files" }
func (t *ReadManyFilesTool) DisplayName() string { return "Read Many Files" }

func (t *ReadManyFilesTool) Description() string {
	return "Reads content from multiple files specified by paths or glob patterns."
}

func (t *ReadManyFilesTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"paths": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "An array of glob patterns or paths to files/directories.",
				},
			},
			Required: []string{"paths"},
		},
	}
}

func (t *ReadManyFilesTool) Validate(args map[string]any) error {
	raw, ok := args["paths"]
	if !ok {
		return NewValidationError("paths", "is required")
	}
	list, ok := raw.([]any)
	if !ok {
		if _, isStrings := raw.([]string); isStrings {
			return nil
		}
		return NewValidationError("paths", "must be an array of strings")
	}
	for _, item := range list {
		if _, ok := item.(string); !ok {
			return NewValidationError("paths", "must be an array of strings")
		}
	}
	return nil
}

func (t *ReadManyFilesTool) Describe(args map[string]any) string {
	var paths []string
	switch v := args["paths"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				paths = append(paths, s)
			}
		}
	case []string:
		paths = v
	}
	if len(paths) == 0 {
		return "Read content from multiple files: unknown paths"
	}
	return "Read content from multiple files: " + strings.Join(paths, ", ")
}

func (t *ReadManyFilesTool) ConfirmationMessage(map[string]any) (string, bool) {
	return "", false
}

type readManyArgs struct {
	Paths []string `mapstructure:"paths"`
}

func (t *ReadManyFilesTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[readManyArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}

	var sections []string
	total := 0
	files := 0
	full := func() bool {
		return files >= t.maxFiles || total >= t.maxBytes
	}

	for _, p := range req.Paths {
		if ctx.Err() != nil {
			return cancelledResult("read_many_files")
		}

		resolved := resolvePath(t.workDir, p)
		var targets []string

		if strings.ContainsAny(p, "*?[{") {
			matches, err := doublestar.FilepathGlob(resolved)
			if err != nil {
				sections = append(sections, fmt.Sprintf("Error matching glob pattern '%s': %s", p, err))
				continue
			}
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
					targets = append(targets, m)
				}
			}
		} else {
			info, err := os.Stat(resolved)
			switch {
			case err != nil:
				sections = append(sections, fmt.Sprintf("--- %s ---\nFile or directory not found.", p))
				continue
			case info.IsDir():
				targets, err = walkFiles(ctx, resolved, "")
				if err != nil {
					if ctx.Err() != nil {
						return cancelledResult("read_many_files")
					}
					sections = append(sections, fmt.Sprintf("Error walking directory '%s': %s", p, err))
					continue
				}
			default:
				targets = []string{resolved}
			}
		}

		for _, target := range targets {
			display := displayPath(t.workDir, p, target)
			data, err := os.ReadFile(target)
			var body string
			switch {
			case err != nil:
				body = fmt.Sprintf("Error reading file: %s", err)
			case fileutil.IsBinary(data):
				continue
			default:
				body = string(data)
			}
			// The marker is only shown when a readable file is left out.
			if full() {
				sections = append(sections, "... (file limit reached)")
				return NewSuccessResult(strings.Join(sections, "\n"))
			}
			sections = append(sections, fmt.Sprintf("--- %s ---\n%s", display, body))
			total += len(body)
			files++
		}
	}

	if len(sections) == 0 {
		return NewSuccessResult("No readable files found.")
	}
	return NewSuccessResult(strings.Join(sections, "\n"))
}

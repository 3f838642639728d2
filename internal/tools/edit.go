package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"google.golang.org/genai"

	"shellmind/internal/fileutil"
)

// maxDiffLines bounds the diff excerpt returned by edit_file.
const maxDiffLines = 40

// EditFileTool replaces every occurrence of a string in a file.
type EditFileTool struct {
	workDir string
}

// NewEditFileTool creates a new EditFileTool.
func NewEditFileTool(workDir string) *EditFileTool {
	return &EditFileTool{workDir: workDir}
}

func (t *EditFileTool) Name() string        { return "edit_file" }
func (t *EditFileTool) DisplayName() string { return "Edit File" }

func (t *EditFileTool) Description() string {
	return "Edits a file by replacing an old string with a new string."
}

func (t *EditFileTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"file_path": {
					Type:        genai.TypeString,
					Description: "The path to the file to edit.",
				},
				"old_string": {
					Type:        genai.TypeString,
					Description: "The string to be replaced.",
				},
				"new_string": {
					Type:        genai.TypeString,
					Description: "The string to replace the old string with.",
				},
			},
			Required: []string{"file_path", "old_string", "new_string"},
		},
	}
}

func (t *EditFileTool) Validate(args map[string]any) error {
	for _, key := range []string{"file_path", "old_string", "new_string"} {
		if err := requireString(args, key); err != nil {
			return err
		}
	}
	if old, _ := GetString(args, "old_string"); old == "" {
		return NewValidationError("old_string", "must not be empty")
	}
	return nil
}

func (t *EditFileTool) Describe(args map[string]any) string {
	return fmt.Sprintf("Edit file '%s': replace %q with %q",
		GetStringDefault(args, "file_path", "unknown file"),
		GetStringDefault(args, "old_string", "unknown old string"),
		GetStringDefault(args, "new_string", "unknown new string"))
}

func (t *EditFileTool) ConfirmationMessage(map[string]any) (string, bool) {
	return "This will modify a file. Are you sure?", true
}

type editFileArgs struct {
	FilePath  string `mapstructure:"file_path"`
	OldString string `mapstructure:"old_string"`
	NewString string `mapstructure:"new_string"`
}

func (t *EditFileTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[editFileArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	if req.FilePath == "" || req.OldString == "" {
		return NewErrorResult("Missing 'file_path' or 'old_string' parameter for edit_file")
	}
	if ctx.Err() != nil {
		return cancelledResult("edit_file")
	}

	path := resolvePath(t.workDir, req.FilePath)
	data, err := os.ReadFile(path)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("Failed to read file '%s': %s", req.FilePath, err))
	}

	oldContent := string(data)
	count := strings.Count(oldContent, req.OldString)
	if count == 0 {
		return NewErrorResult(fmt.Sprintf("old_string not found in '%s'", req.FilePath))
	}
	newContent := strings.ReplaceAll(oldContent, req.OldString, req.NewString)

	if ctx.Err() != nil {
		return cancelledResult("edit_file")
	}
	if err := fileutil.AtomicWriteString(path, newContent, 0644); err != nil {
		return NewErrorResult(fmt.Sprintf("Failed to write to file '%s': %s", req.FilePath, err))
	}

	added, removed, excerpt := lineDiff(oldContent, newContent)
	summary := fmt.Sprintf("Successfully edited file '%s' (%d replacement(s), +%d -%d lines).",
		req.FilePath, count, added, removed)
	if excerpt != "" {
		summary += "\n" + excerpt
	}
	return NewSuccessResultWithData(summary, map[string]any{
		"replacements": count,
		"added":        added,
		"removed":      removed,
	})
}

// lineDiff returns line counts and a +/- excerpt of the changed lines.
func lineDiff(oldText, newText string) (added, removed int, excerpt string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			if prefix == "+" {
				added++
			} else {
				removed++
			}
			if len(out) < maxDiffLines {
				out = append(out, prefix+line)
			}
		}
	}
	if added+removed > len(out) {
		out = append(out, fmt.Sprintf("... (%d more changed lines)", added+removed-len(out)))
	}
	return added, removed, strings.Join(out, "\n")
}

package tools

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"google.golang.org/genai"

	"shellmind/internal/fileutil"
)

const (
	maxSearchResults  = 500
	maxSearchFileSize = 5 << 20
	maxSearchLineLen  = 500
)

// SearchTool searches file contents for a regular expression.
type SearchTool struct {
	workDir string
}

// NewSearchTool creates a new SearchTool.
func NewSearchTool(workDir string) *SearchTool {
	return &SearchTool{workDir: workDir}
}

func (t *SearchTool) Name() string        { return "search_file_content" }
func (t *SearchTool) DisplayName() string { return "Search File Content" }

func (t *SearchTool) Description() string {
	return "Searches for a regular expression pattern within the content of files in a specified directory."
}

func (t *SearchTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "The directory to search within. If omitted, searches the current working directory.",
				},
				"pattern": {
					Type:        genai.TypeString,
					Description: "The regular expression (regex) pattern to search for within file contents.",
				},
				"include": {
					Type:        genai.TypeString,
					Description: "Optional: A glob pattern to filter which files are searched (e.g., *.js, *.{ts,tsx}, src/**). If omitted, searches all files.",
				},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *SearchTool) Validate(args map[string]any) error {
	if err := requireString(args, "pattern"); err != nil {
		return err
	}
	pattern, _ := GetString(args, "pattern")
	if _, err := regexp.Compile(pattern); err != nil {
		return NewValidationError("pattern", err.Error())
	}
	if err := optionalString(args, "path"); err != nil {
		return err
	}
	return optionalString(args, "include")
}

func (t *SearchTool) Describe(args map[string]any) string {
	return fmt.Sprintf("Search for pattern %q in files under '%s'",
		GetStringDefault(args, "pattern", "unknown pattern"),
		GetStringDefault(args, "path", "current directory"))
}

func (t *SearchTool) ConfirmationMessage(map[string]any) (string, bool) {
	return "", false
}

type searchArgs struct {
	Path    string `mapstructure:"path"`
	Pattern string `mapstructure:"pattern"`
	Include string `mapstructure:"include"`
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[searchArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	re, err := regexp.Compile(req.Pattern)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("Invalid regex pattern: %s", err))
	}

	root := resolvePath(t.workDir, req.Path)
	info, err := os.Stat(root)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("Failed to search '%s': %s", req.Path, err))
	}

	var files []string
	if info.IsDir() {
		files, err = walkFiles(ctx, root, req.Include)
		if err != nil {
			if ctx.Err() != nil {
				return cancelledResult("search_file_content")
			}
			return NewErrorResult(fmt.Sprintf("Error walking directory: %s", err))
		}
	} else {
		files = []string{root}
	}

	var results []string
	truncated := false
	for _, file := range files {
		if ctx.Err() != nil {
			return cancelledResult("search_file_content")
		}
		matches := searchFile(file, re)
		for _, m := range matches {
			if len(results) >= maxSearchResults {
				truncated = true
				break
			}
			results = append(results, fmt.Sprintf("%s:%d:%s", displayPath(t.workDir, req.Path, file), m.line, m.text))
		}
		if truncated {
			break
		}
	}

	if len(results) == 0 {
		return NewSuccessResult("No matches found.")
	}
	out := strings.Join(results, "\n")
	if truncated {
		out += fmt.Sprintf("\n... (results limited to %d matches)", maxSearchResults)
	}
	return NewSuccessResult(out)
}

type lineMatch struct {
	line int
	text string
}

func searchFile(path string, re *regexp.Regexp) []lineMatch {
	data, err := os.ReadFile(path)
	if err != nil || fileutil.IsBinary(data) {
		return nil
	}

	var matches []lineMatch
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), maxSearchFileSize)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Text()
		if re.MatchString(line) {
			if len(line) > maxSearchLineLen {
				line = line[:maxSearchLineLen] + "..."
			}
			matches = append(matches, lineMatch{line: n, text: line})
		}
	}
	return matches
}

// walkFiles lists regular files under root in lexical order, honouring
// .gitignore and an optional include glob.
func walkFiles(ctx context.Context, root, include string) ([]string, error) {
	ignore := newIgnoreMatcher(root)
	include = filepath.ToSlash(include)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == root {
			return nil
		}
		if ignore.Ignored(path, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err != nil || info.Size() > maxSearchFileSize {
			return nil
		}
		if include != "" && !matchInclude(root, path, include) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// matchInclude matches patterns without a slash against the base name and
// all others against the path relative to root.
func matchInclude(root, path, include string) bool {
	if !strings.Contains(include, "/") {
		ok, _ := doublestar.Match(include, filepath.Base(path))
		return ok
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	ok, _ := doublestar.Match(include, filepath.ToSlash(rel))
	return ok
}

package tools

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// defaultIgnores are skipped even without a .gitignore.
var defaultIgnores = []string{".git/", "node_modules/"}

// ignoreMatcher applies the .gitignore found at a search root.
type ignoreMatcher struct {
	root    string
	matcher gitignore.Matcher
}

func newIgnoreMatcher(root string) *ignoreMatcher {
	var patterns []gitignore.Pattern
	for _, p := range defaultIgnores {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	if f, err := os.Open(filepath.Join(root, ".gitignore")); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r")
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, nil))
		}
		f.Close()
	}

	return &ignoreMatcher{root: root, matcher: gitignore.NewMatcher(patterns)}
}

// Ignored reports whether path is ignored. path is as produced by walking
// root, so it carries root as its prefix.
func (m *ignoreMatcher) Ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return false
	}
	segments := splitPath(rel)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

// splitPath splits a path into segments, dropping empty and "." parts.
func splitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}

package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "hello\nworld\n")
	tool := NewReadFileTool(dir)

	res := tool.Execute(context.Background(), map[string]any{"path": "notes.txt"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "hello\nworld\n", res.Content)

	res = tool.Execute(context.Background(), map[string]any{"path": "missing.txt"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Failed to read file 'missing.txt'")

	res = tool.Execute(context.Background(), map[string]any{"path": "."})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "is a directory")
}

func TestReadFileRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blob.bin", "abc\x00def")

	res := NewReadFileTool(dir).Execute(context.Background(), map[string]any{"path": "blob.bin"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "binary")
}

func TestReadFileValidate(t *testing.T) {
	tool := NewReadFileTool("")
	assert.Error(t, tool.Validate(map[string]any{}))
	assert.Error(t, tool.Validate(map[string]any{"path": 42}))
	assert.NoError(t, tool.Validate(map[string]any{"path": "a.txt"}))
	assert.Equal(t, "Read file: unknown path", tool.Describe(nil))
}

func TestCancelledToolDoesNothing(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewWriteFileTool(dir).Execute(ctx, map[string]any{"path": "out.txt", "content": "x"})
	assert.False(t, res.Success)
	assert.Equal(t, "write_file cancelled", res.Error)
	assert.NoFileExists(t, filepath.Join(dir, "out.txt"))
}

func TestWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	tool := NewWriteFileTool(dir)

	msg, ok := tool.ConfirmationMessage(nil)
	assert.True(t, ok)
	assert.Equal(t, "This will write content to a file. Are you sure?", msg)

	res := tool.Execute(context.Background(), map[string]any{"path": "a/b/out.txt", "content": "data"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Successfully wrote to file 'a/b/out.txt'.", res.Content)

	data, err := os.ReadFile(filepath.Join(dir, "a", "b", "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestEditFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.go", "foo := 1\nbar := foo\nbaz := 3\n")
	tool := NewEditFileTool(dir)

	_, ok := tool.ConfirmationMessage(nil)
	assert.True(t, ok)

	res := tool.Execute(context.Background(), map[string]any{
		"file_path":  "main.go",
		"old_string": "foo",
		"new_string": "qux",
	})
	require.True(t, res.Success, res.Error)
	assert.Contains(t, res.Content, "2 replacement(s), +2 -2 lines")
	assert.Contains(t, res.Content, "-foo := 1")
	assert.Contains(t, res.Content, "+qux := 1")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "qux := 1\nbar := qux\nbaz := 3\n", string(data))
}

func TestEditFileOldStringMissing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "unchanged")

	res := NewEditFileTool(dir).Execute(context.Background(), map[string]any{
		"file_path":  "a.txt",
		"old_string": "nope",
		"new_string": "x",
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "old_string not found")

	data, _ := os.ReadFile(path)
	assert.Equal(t, "unchanged", string(data))
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "")
	writeFile(t, dir, "a.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	res := NewListDirTool(dir).Execute(context.Background(), map[string]any{"path": "."})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "a.txt\nb.txt\nsub", res.Content)
	assert.Equal(t, []string{"a.txt", "b.txt", "sub"}, res.Data)
}

func TestListDirectoryMissing(t *testing.T) {
	res := NewListDirTool(t.TempDir()).Execute(context.Background(), map[string]any{"path": "nope"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Failed to read directory 'nope'")
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/a.go", "")
	writeFile(t, dir, "src/pkg/b.go", "")
	writeFile(t, dir, "README.md", "")

	tool := NewGlobTool(dir)
	require.NoError(t, tool.Validate(map[string]any{"pattern": "**/*.go"}))
	assert.Error(t, tool.Validate(map[string]any{"pattern": "[unclosed"}))

	res := tool.Execute(context.Background(), map[string]any{"pattern": "**/*.go"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, filepath.Join("src", "a.go")+"\n"+filepath.Join("src", "pkg", "b.go"), res.Content)

	res = tool.Execute(context.Background(), map[string]any{"pattern": "*.rs"})
	require.True(t, res.Success)
	assert.Equal(t, "No matches found.", res.Content)
}

func TestSearchFileContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "build/\n")
	writeFile(t, dir, "main.go", "package main\n\nfunc main() {\n\tTODO()\n}\n")
	writeFile(t, dir, "notes.md", "TODO: write docs\n")
	writeFile(t, dir, "build/out.go", "TODO in build output\n")

	tool := NewSearchTool(dir)
	res := tool.Execute(context.Background(), map[string]any{"pattern": "TODO"})
	require.True(t, res.Success, res.Error)

	lines := strings.Split(res.Content, "\n")
	assert.Equal(t, []string{"main.go:4:\tTODO()", "notes.md:1:TODO: write docs"}, lines)

	res = tool.Execute(context.Background(), map[string]any{"pattern": "TODO", "include": "*.md"})
	require.True(t, res.Success)
	assert.Equal(t, "notes.md:1:TODO: write docs", res.Content)

	res = tool.Execute(context.Background(), map[string]any{"pattern": "nothing-here"})
	require.True(t, res.Success)
	assert.Equal(t, "No matches found.", res.Content)

	assert.Error(t, tool.Validate(map[string]any{"pattern": "("}))
}

func TestReadManyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "docs/b.md", "bravo")
	writeFile(t, dir, "docs/c.md", "charlie")

	tool := NewReadManyFilesTool(dir)
	require.NoError(t, tool.Validate(map[string]any{"paths": []any{"a.txt"}}))
	assert.Error(t, tool.Validate(map[string]any{"paths": []any{1}}))

	res := tool.Execute(context.Background(), map[string]any{"paths": []any{"a.txt", "docs/*.md", "missing.txt"}})
	require.True(t, res.Success, res.Error)
	assert.Contains(t, res.Content, "--- a.txt ---\nalpha")
	assert.Contains(t, res.Content, "--- "+filepath.Join("docs", "b.md")+" ---\nbravo")
	assert.Contains(t, res.Content, "--- "+filepath.Join("docs", "c.md")+" ---\ncharlie")
	assert.Contains(t, res.Content, "--- missing.txt ---\nFile or directory not found.")

	res = tool.Execute(context.Background(), map[string]any{"paths": []any{"*.none"}})
	require.True(t, res.Success)
	assert.Equal(t, "No readable files found.", res.Content)

	assert.Equal(t, "Read content from multiple files: a.txt, b.txt", tool.Describe(map[string]any{"paths": []any{"a.txt", "b.txt"}}))
}

func TestReadManyFilesLimitMarker(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "b.txt", "bravo")
	args := map[string]any{"paths": []any{"a.txt", "b.txt"}}

	tool := NewReadManyFilesTool(dir)
	tool.maxFiles = 2
	res := tool.Execute(context.Background(), args)
	require.True(t, res.Success, res.Error)
	assert.Contains(t, res.Content, "--- b.txt ---\nbravo")
	assert.NotContains(t, res.Content, "file limit reached")

	tool.maxFiles = 1
	res = tool.Execute(context.Background(), args)
	require.True(t, res.Success, res.Error)
	assert.Contains(t, res.Content, "--- a.txt ---\nalpha")
	assert.NotContains(t, res.Content, "bravo")
	assert.True(t, strings.HasSuffix(res.Content, "... (file limit reached)"))

	tool.maxFiles = 10
	tool.maxBytes = len("alpha")
	res = tool.Execute(context.Background(), map[string]any{"paths": []any{"a.txt"}})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "--- a.txt ---\nalpha", res.Content)
}

func TestIgnoreMatcherWithRelativeRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "proj", ".gitignore", "/out\n*.log\n")
	writeFile(t, "proj", "src/main.go", "package main\n")
	writeFile(t, "proj", "src/out/keep.go", "package out\n")
	writeFile(t, "proj", "out/gen.go", "package gen\n")
	writeFile(t, "proj", "debug.log", "trace\n")

	m := newIgnoreMatcher("proj")
	assert.True(t, m.Ignored(filepath.Join("proj", "out"), true))
	assert.False(t, m.Ignored(filepath.Join("proj", "src", "out"), true))
	assert.True(t, m.Ignored(filepath.Join("proj", "debug.log"), false))
	assert.False(t, m.Ignored(filepath.Join("proj", "src", "main.go"), false))

	files, err := walkFiles(context.Background(), "proj", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join("proj", ".gitignore"),
		filepath.Join("proj", "src", "main.go"),
		filepath.Join("proj", "src", "out", "keep.go"),
	}, files)
}

package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellmind/internal/memory"
	"shellmind/internal/tools"
)

type fakeFacts struct {
	entries []memory.Entry
	err     error
}

func (f fakeFacts) List(context.Context) ([]memory.Entry, error) {
	return f.entries, f.err
}

func TestBuildIncludesBaseFormatAndTools(t *testing.T) {
	registry := tools.DefaultRegistry(tools.Deps{WorkDir: t.TempDir()})
	b := NewBuilder("You are a shell helper.", registry)
	b.SetWorkDir("/home/user/project")

	out := b.Build(context.Background())

	assert.Contains(t, out, "You are a shell helper.")
	assert.Contains(t, out, "## Response Format")
	assert.Contains(t, out, `tool_name({"arg": "value"})`)
	assert.Contains(t, out, "## Available Tools")
	for _, name := range registry.Names() {
		assert.Contains(t, out, "- "+name+": ")
	}
	assert.Contains(t, out, `"required":["paths"]`)
	assert.Contains(t, out, "The user's working directory is: /home/user/project")
	assert.NotContains(t, out, "## Remembered Facts")
}

func TestBuildIncludesFacts(t *testing.T) {
	b := NewBuilder("base", nil)
	b.SetFactSource(fakeFacts{entries: []memory.Entry{
		memory.NewEntry("prefers zsh"),
		memory.NewEntry("project lives in ~/src/app"),
	}})

	out := b.Build(context.Background())
	assert.Contains(t, out, "## Remembered Facts\n\n- prefers zsh\n- project lives in ~/src/app")
	assert.NotContains(t, out, "## Available Tools")
}

func TestBuildSkipsFactsOnError(t *testing.T) {
	b := NewBuilder("base", nil)
	b.SetFactSource(fakeFacts{err: errors.New("db locked")})

	out := b.Build(context.Background())
	assert.NotContains(t, out, "Remembered Facts")
}

func TestBuildWithStore(t *testing.T) {
	store, err := memory.Open(t.TempDir() + "/memory.db")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Remember(context.Background(), "deploys go through make release"))

	b := NewBuilder("base", nil)
	b.SetFactSource(store)
	assert.Contains(t, b.Build(context.Background()), "- deploys go through make release")
}

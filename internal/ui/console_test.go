package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellmind/internal/permission"
	"shellmind/internal/security"
	"shellmind/internal/tools"
)

func newTestConsole(input string) (*Console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	c := NewConsole(Options{In: strings.NewReader(input), Out: out, Markdown: true, Highlight: true})
	return c, out
}

func TestReadLine(t *testing.T) {
	c, out := newTestConsole("first\r\nsecond")

	line, err := c.ReadLine(context.Background(), "> ")
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = c.ReadLine(context.Background(), "> ")
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	_, err = c.ReadLine(context.Background(), "> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
}

func TestReadLineCancelled(t *testing.T) {
	c, _ := newTestConsole("ignored\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ReadLine(ctx, "> ")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNonInteractiveOutputIsPlain(t *testing.T) {
	c, out := newTestConsole("")
	assert.Nil(t, c.markdown)
	assert.Nil(t, c.highlighter)

	c.Message("# Title\nbody")
	c.Proposal("Read file: a.txt")
	c.Status("not executed")
	c.Error(errors.New("boom"))

	assert.Equal(t, "# Title\nbody\n→ Read file: a.txt\nnot executed\n✗ Error: boom\n", out.String())
}

func TestOutcome(t *testing.T) {
	c, out := newTestConsole("")

	c.Outcome(tools.NewSuccessResult("a.txt\nb.txt\n"))
	c.Outcome(tools.ToolResult{Error: "Command failed with exit code 2", Content: "ls: cannot access"})

	assert.Equal(t, "a.txt\nb.txt\n✗ Command failed with exit code 2\nls: cannot access\n", out.String())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		c, out := newTestConsole(tt.input)
		got, err := c.Confirm(context.Background(), "Overwrite a.txt?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Overwrite a.txt?")
	}
}

func TestChoose(t *testing.T) {
	tests := []struct {
		input string
		want  permission.Decision
	}{
		{"r\n", permission.DecisionRunOnce},
		{"a\n", permission.DecisionAlwaysAllow},
		{"d\n", permission.DecisionDeny},
		{"what\nalways\n", permission.DecisionAlwaysAllow},
		{"", permission.DecisionDeny},
	}
	for _, tt := range tests {
		c, _ := newTestConsole(tt.input)
		got, err := c.Choose(context.Background(), "ls -la", security.Assessment{})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestChooseShowsRisk(t *testing.T) {
	c, out := newTestConsole("d\n")
	_, err := c.Choose(context.Background(), "rm -rf /", security.Assessment{Level: security.RiskHigh, Reason: "deletes the root filesystem"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "→ rm -rf /")
	assert.Contains(t, out.String(), "HIGH risk: deletes the root filesystem")
}

func TestChooseRepromptsOnInvalidAnswer(t *testing.T) {
	c, out := newTestConsole("maybe\nr\n")
	got, err := c.Choose(context.Background(), "make", security.Assessment{})
	require.NoError(t, err)
	assert.Equal(t, permission.DecisionRunOnce, got)
	assert.Contains(t, out.String(), "please answer r, a or d")
}

func TestConsoleSatisfiesPrompter(t *testing.T) {
	var _ permission.Prompter = (*Console)(nil)
}

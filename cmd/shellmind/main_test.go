package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellmind/internal/chat"
	"shellmind/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, model = "", ""
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "shellmind version "+version+"\n", out)
}

func TestConfigSetAndShow(t *testing.T) {
	t.Setenv("SHELLMIND_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := execute(t, "--config", path, "config", "set", "api_type", "grpc")
	require.NoError(t, err)
	_, err = execute(t, "--config", path, "config", "set", "api_key", "very-secret")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.APITypeGRPC, cfg.API.Type)

	out, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "API type:       grpc")
	assert.Contains(t, out, "API key:        ********")
	assert.NotContains(t, out, "very-secret")
}

func TestConfigSetRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := execute(t, "--config", path, "config", "set", "colour", "blue")
	assert.Error(t, err)
}

func TestPromptRequiresText(t *testing.T) {
	_, err := execute(t, "prompt")
	assert.Error(t, err)
}

func TestSessionsCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	transcripts := filepath.Join(dir, "sessions")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  transcript_dir: "+transcripts+"\n"), 0600))

	out, err := execute(t, "--config", path, "sessions")
	require.NoError(t, err)
	assert.Equal(t, "No saved sessions.\n", out)

	store, err := chat.NewTranscriptStore(transcripts)
	require.NoError(t, err)
	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(&chat.Transcript{
		SessionID: "abc",
		Model:     "gemini-test",
		StartTime: start,
		EndTime:   start.Add(time.Minute),
		Turns: []chat.Turn{
			{Role: chat.RoleUser, Text: "list files"},
			{Role: chat.RoleModel, Text: "ls -la"},
		},
	}))

	out, err = execute(t, "--config", path, "sessions")
	require.NoError(t, err)
	assert.Equal(t, "abc\n", out)

	out, err = execute(t, "--config", path, "sessions", "show", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "Session abc (gemini-test, 2026-01-02 10:00:00 - 10:01:00)")
	assert.Contains(t, out, "[user] list files\n[model] ls -la\n")

	_, err = execute(t, "--config", path, "sessions", "show", "missing")
	assert.Error(t, err)
}

package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryPreservesOrderAndDuplicates(t *testing.T) {
	h := NewHistory()

	var want []Turn
	for i := 0; i < 10; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleModel
		}
		// Repeat text to make sure nothing is deduplicated.
		turn := Turn{Role: role, Text: fmt.Sprintf("turn %d", i/4)}
		h.Append(turn)
		want = append(want, turn)
	}

	assert.Equal(t, want, h.Turns())
	assert.Equal(t, 10, h.Len())
}

func TestHistoryTurnsReturnsCopy(t *testing.T) {
	h := NewHistory()
	h.AppendExchange("list files", "ls")

	turns := h.Turns()
	turns[0].Text = "mutated"

	assert.Equal(t, "list files", h.Turns()[0].Text)
	assert.Equal(t, RoleModel, h.Turns()[1].Role)
}

func TestCommandLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "command_history")

	log, err := OpenCommandLog(path)
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Append("list files"))
	require.NoError(t, log.Append("show\ndisk usage"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "list files\nshow disk usage\n", string(data))

	entries, err := log.Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"list files", "show disk usage"}, entries)
}

func TestCommandLogAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "command_history")

	first, err := OpenCommandLog(path)
	require.NoError(t, err)
	require.NoError(t, first.Append("one"))
	require.NoError(t, first.Close())

	second, err := OpenCommandLog(path)
	require.NoError(t, err)
	require.NoError(t, second.Append("two"))
	require.NoError(t, second.Close())

	entries, err := second.Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, entries)
}

func TestOpenCommandLogUnwritable(t *testing.T) {
	dir := t.TempDir()
	// A regular file where a directory is expected.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	_, err := OpenCommandLog(filepath.Join(blocker, "command_history"))
	assert.Error(t, err)

	_, err = OpenCommandLog("")
	assert.Error(t, err)
}

func TestCommandLogClosed(t *testing.T) {
	log, err := OpenCommandLog(filepath.Join(t.TempDir(), "h"))
	require.NoError(t, err)
	require.NoError(t, log.Close())
	assert.ErrorIs(t, log.Append("x"), os.ErrClosed)
}

func TestTranscriptStore(t *testing.T) {
	store, err := NewTranscriptStore(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tr := &Transcript{
		SessionID: "abc",
		StartTime: start,
		EndTime:   start.Add(time.Minute),
		Model:     "gemini-1.5-flash",
		Turns:     []Turn{{Role: RoleUser, Text: "hi"}, {Role: RoleModel, Text: "hello\nthere"}},
	}
	require.NoError(t, store.Save(tr))
	require.NoError(t, store.Save(&Transcript{SessionID: "000"}))

	loaded, err := store.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, tr.Turns, loaded.Turns)
	assert.True(t, tr.StartTime.Equal(loaded.StartTime))

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"000", "abc"}, ids)

	_, err = store.Load("missing")
	assert.True(t, os.IsNotExist(err))
}

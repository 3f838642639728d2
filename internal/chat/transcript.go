package chat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shellmind/internal/fileutil"
)

// Transcript is a saved session history.
type Transcript struct {
	SessionID string    `json:"session_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Model     string    `json:"model,omitempty"`
	Turns     []Turn    `json:"turns"`
}

// TranscriptStore persists transcripts as one JSON file per session.
type TranscriptStore struct {
	dir string
}

// NewTranscriptStore creates the store directory if needed.
func NewTranscriptStore(dir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &TranscriptStore{dir: dir}, nil
}

// Save writes t to <dir>/<session id>.json.
func (s *TranscriptStore) Save(t *Transcript) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.AtomicWrite(s.file(t.SessionID), data, 0600)
}

// Load reads a transcript by session ID.
func (s *TranscriptStore) Load(sessionID string) (*Transcript, error) {
	data, err := os.ReadFile(s.file(sessionID))
	if err != nil {
		return nil, err
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns the saved session IDs, sorted.
func (s *TranscriptStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *TranscriptStore) file(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

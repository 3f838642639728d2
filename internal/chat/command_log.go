package chat

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CommandLog is the newline-delimited, append-only log of raw user inputs.
// It is never fed back to the backend.
type CommandLog struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

// OpenCommandLog opens path for appending, creating it and its directory.
func OpenCommandLog(path string) (*CommandLog, error) {
	if path == "" {
		return nil, fmt.Errorf("command history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open command history: %w", err)
	}

	return &CommandLog{path: path, f: f}, nil
}

// Path returns the log file path.
func (l *CommandLog) Path() string {
	return l.path
}

// Append writes one input as a single line.
func (l *CommandLog) Append(input string) error {
	line := strings.ReplaceAll(input, "\n", " ")

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return os.ErrClosed
	}
	if _, err := l.f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append command history: %w", err)
	}
	return nil
}

// Entries reads back every logged input in order.
func (l *CommandLog) Entries() ([]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			entries = append(entries, line)
		}
	}
	return entries, scanner.Err()
}

// Close closes the underlying file.
func (l *CommandLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

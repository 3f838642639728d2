package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"shellmind/internal/logging"
	"shellmind/internal/security"
)

// Config holds audit logger configuration.
type Config struct {
	Enabled      bool
	Path         string
	MaxEntries   int
	MaxResultLen int
}

// DefaultConfig returns the default audit configuration.
func DefaultConfig(path string) Config {
	return Config{
		Enabled:      true,
		Path:         path,
		MaxEntries:   10000,
		MaxResultLen: 1000,
	}
}

// Logger appends audit entries to a JSON-lines file. Secrets in arguments,
// commands and results are redacted before anything is written.
type Logger struct {
	sessionID    string
	maxEntries   int
	maxResultLen int
	redactor     *security.SecretRedactor

	file    *os.File
	entries []*Entry
	enabled bool
	mu      sync.Mutex
}

// NewLogger creates a new audit logger. A disabled config yields a logger
// whose methods do nothing.
func NewLogger(cfg Config, sessionID string) (*Logger, error) {
	if !cfg.Enabled {
		return &Logger{enabled: false}, nil
	}
	if cfg.Path == "" {
		return nil, errors.New("audit log path is empty")
	}

	// Use 0700 to restrict access to owner only (contains sensitive data)
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &Logger{
		sessionID:    sessionID,
		maxEntries:   cfg.MaxEntries,
		maxResultLen: cfg.MaxResultLen,
		redactor:     security.NewSecretRedactor(),
		file:         f,
		enabled:      true,
	}, nil
}

// Enabled reports whether entries are recorded.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Log records a new audit entry.
func (l *Logger) Log(entry *Entry) error {
	if !l.Enabled() || entry == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return os.ErrClosed
	}

	entry.SessionID = l.sessionID
	entry.Args = l.redactor.RedactMap(entry.Args)
	entry.Command = l.redactor.Redact(entry.Command)
	entry.Error = l.redactor.Redact(entry.Error)
	entry.Result = TruncateResult(l.redactor.Redact(entry.Result), l.maxResultLen)

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	l.entries = append(l.entries, entry)
	if l.maxEntries > 0 && len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
	return nil
}

// Query retrieves entries of this session matching the filter.
func (l *Logger) Query(filter QueryFilter) []*Entry {
	if !l.Enabled() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var results []*Entry
	for _, entry := range l.entries {
		if entry.Matches(filter) {
			results = append(results, entry)
			if filter.Limit > 0 && len(results) >= filter.Limit {
				break
			}
		}
	}
	return results
}

// Len returns the number of entries held for this session.
func (l *Logger) Len() int {
	if !l.Enabled() {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	if !l.Enabled() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ReadFile loads every entry from a JSON-lines audit file. Malformed lines
// are skipped.
func ReadFile(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []*Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4<<20)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			logging.Debug("skipping malformed audit line", "error", err)
			continue
		}
		entries = append(entries, &e)
	}
	return entries, scanner.Err()
}

package audit

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes what an entry records.
type Kind string

const (
	KindTool    Kind = "tool"
	KindCommand Kind = "command"
)

// Entry represents a single audit log entry.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Kind      Kind           `json:"kind"`
	ToolName  string         `json:"tool_name,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	Command   string         `json:"command,omitempty"`
	Decision  string         `json:"decision"`
	Result    string         `json:"result,omitempty"` // Truncated result
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Duration  time.Duration  `json:"-"`
}

// NewToolEntry creates an entry for a tool invocation.
func NewToolEntry(toolName string, args map[string]any) *Entry {
	return &Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Kind:      KindTool,
		ToolName:  toolName,
		Args:      args,
	}
}

// NewCommandEntry creates an entry for a suggested shell command.
func NewCommandEntry(command string) *Entry {
	return &Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Kind:      KindCommand,
		Command:   command,
	}
}

// Complete fills in the result fields after execution.
func (e *Entry) Complete(result string, success bool, errMsg string, duration time.Duration) {
	e.Result = result
	e.Success = success
	e.Error = errMsg
	e.Duration = duration
}

// MarshalJSON writes Duration as whole milliseconds.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type Alias Entry
	return json.Marshal(&struct {
		*Alias
		DurationMs int64 `json:"duration_ms"`
	}{
		Alias:      (*Alias)(e),
		DurationMs: e.Duration.Milliseconds(),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type Alias Entry
	aux := &struct {
		*Alias
		DurationMs int64 `json:"duration_ms"`
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	e.Duration = time.Duration(aux.DurationMs) * time.Millisecond
	return nil
}

// QueryFilter defines criteria for querying audit entries.
type QueryFilter struct {
	Kind     Kind
	ToolName string
	Success  *bool
	Since    time.Time
	Limit    int
}

// Matches returns true if the entry matches the filter.
func (e *Entry) Matches(f QueryFilter) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.ToolName != "" && e.ToolName != f.ToolName {
		return false
	}
	if f.Success != nil && e.Success != *f.Success {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

// TruncateResult shortens a result to maxLen bytes.
func TruncateResult(result string, maxLen int) string {
	if maxLen <= 0 || len(result) <= maxLen {
		return result
	}
	return strings.ToValidUTF8(result[:maxLen], "") + "... (truncated)"
}

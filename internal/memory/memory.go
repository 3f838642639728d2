package memory

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is a single remembered fact.
type Entry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntry creates a new memory entry with a generated ID.
func NewEntry(content string) Entry {
	return Entry{
		ID:        "mem_" + uuid.NewString(),
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// SearchQuery selects remembered facts.
type SearchQuery struct {
	Query string // Content search (case-insensitive substring)
	Limit int    // Max results (0 = unlimited)
}

// Matches returns true if the entry matches the search query.
func (e Entry) Matches(q SearchQuery) bool {
	if q.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Content), strings.ToLower(q.Query))
}

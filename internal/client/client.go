// Package client talks to the generative backends that turn a prompt and
// conversation history into a suggestion.
package client

import (
	"context"
	"time"

	"shellmind/internal/chat"
)

// FallbackText is returned when a backend answers without any candidate text.
const FallbackText = "No command generated"

// Client produces a single reply for a prompt given the prior conversation.
type Client interface {
	// Generate performs exactly one backend round trip. Failures are
	// returned as *BackendError.
	Generate(ctx context.Context, prompt string, history []chat.Turn) (string, error)

	// Model returns the model name used for requests.
	Model() string

	// Close releases transport resources.
	Close() error
}

// Settings holds the request parameters shared by every backend.
type Settings struct {
	Model             string
	Temperature       float32
	SystemInstruction string
	Timeout           time.Duration
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// textOrFallback returns text unless it is empty.
func textOrFallback(text string) string {
	if text == "" {
		return FallbackText
	}
	return text
}

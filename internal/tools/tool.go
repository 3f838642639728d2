package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"google.golang.org/genai"
)

// Tool defines the interface for all tools.
type Tool interface {
	// Name returns the unique name of the tool, used as the dispatch key.
	Name() string

	// DisplayName returns a human-readable name.
	DisplayName() string

	// Description returns a human-readable description.
	Description() string

	// Declaration returns the function declaration advertised to the model.
	Declaration() *genai.FunctionDeclaration

	// Validate checks that required arguments are present and well-typed.
	// It must not have side effects.
	Validate(args map[string]any) error

	// Describe renders a one-line summary of the call. It never fails and
	// uses placeholders for missing arguments.
	Describe(args map[string]any) string

	// ConfirmationMessage returns the prompt to show before running the call.
	// ok is false when the call is safe to run unattended.
	ConfirmationMessage(args map[string]any) (message string, ok bool)

	// Execute runs the tool. Every failure, including cancellation, is
	// reported in the returned ToolResult.
	Execute(ctx context.Context, args map[string]any) ToolResult
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	// Content is the main result content (usually text).
	Content string

	// Data contains structured data if applicable.
	Data any

	// Error contains an error message if the tool failed.
	Error string

	// Success indicates if the tool executed successfully.
	Success bool
}

// NewSuccessResult creates a successful tool result.
func NewSuccessResult(content string) ToolResult {
	return ToolResult{
		Content: content,
		Success: true,
	}
}

// NewSuccessResultWithData creates a successful tool result with additional data.
func NewSuccessResultWithData(content string, data any) ToolResult {
	return ToolResult{
		Content: content,
		Data:    data,
		Success: true,
	}
}

// NewErrorResult creates a failed tool result.
func NewErrorResult(errMsg string) ToolResult {
	return ToolResult{
		Error:   errMsg,
		Success: false,
	}
}

// Text returns the content on success and the error otherwise.
func (r ToolResult) Text() string {
	if r.Success {
		return r.Content
	}
	if r.Content != "" {
		return r.Error + "\n" + r.Content
	}
	return r.Error
}

func cancelledResult(action string) ToolResult {
	return NewErrorResult(action + " cancelled")
}

// ValidationError represents a tool argument validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// GetString extracts a string argument from the args map.
func GetString(args map[string]any, key string) (string, bool) {
	val, ok := args[key]
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetStringDefault extracts a string argument with a default value.
func GetStringDefault(args map[string]any, key, defaultVal string) string {
	if val, ok := GetString(args, key); ok {
		return val
	}
	return defaultVal
}

func requireString(args map[string]any, key string) error {
	val, ok := args[key]
	if !ok {
		return NewValidationError(key, "is required")
	}
	if _, ok := val.(string); !ok {
		return NewValidationError(key, "must be a string")
	}
	return nil
}

func optionalString(args map[string]any, key string) error {
	if val, ok := args[key]; ok {
		if _, ok := val.(string); !ok {
			return NewValidationError(key, "must be a string")
		}
	}
	return nil
}

// decodeArgs decodes args into a typed request.
func decodeArgs[T any](args map[string]any) (T, error) {
	var req T
	if err := mapstructure.Decode(args, &req); err != nil {
		return req, fmt.Errorf("invalid arguments: %w", err)
	}
	return req, nil
}

// resolvePath makes p absolute relative to base.
func resolvePath(base, p string) string {
	if p == "" {
		p = "."
	}
	if filepath.IsAbs(p) || base == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

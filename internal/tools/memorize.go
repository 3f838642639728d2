package tools

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// FactStore persists facts across sessions.
type FactStore interface {
	Remember(ctx context.Context, fact string) error
}

// MemorizeTool saves a fact to long-term memory.
type MemorizeTool struct {
	store FactStore
}

// NewMemorizeTool creates a new MemorizeTool. A nil store makes every call fail.
func NewMemorizeTool(store FactStore) *MemorizeTool {
	return &MemorizeTool{store: store}
}

func (t *MemorizeTool) Name() string        { return "save_memory" }
func (t *MemorizeTool) DisplayName() string { return "Save Memory" }

func (t *MemorizeTool) Description() string {
	return "Saves a specific piece of information or fact to your long-term memory."
}

func (t *MemorizeTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"fact": {
					Type:        genai.TypeString,
					Description: "The specific fact or piece of information to remember.",
				},
			},
			Required: []string{"fact"},
		},
	}
}

func (t *MemorizeTool) Validate(args map[string]any) error {
	if err := requireString(args, "fact"); err != nil {
		return err
	}
	if fact, _ := GetString(args, "fact"); strings.TrimSpace(fact) == "" {
		return NewValidationError("fact", "must not be empty")
	}
	return nil
}

func (t *MemorizeTool) Describe(args map[string]any) string {
	return "Save to memory: " + GetStringDefault(args, "fact", "unknown fact")
}

func (t *MemorizeTool) ConfirmationMessage(map[string]any) (string, bool) {
	return "", false
}

type memorizeArgs struct {
	Fact string `mapstructure:"fact"`
}

func (t *MemorizeTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[memorizeArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	if req.Fact == "" {
		return NewErrorResult("Missing 'fact' parameter for save_memory")
	}
	if t.store == nil {
		return NewErrorResult("memory store not initialized")
	}
	if ctx.Err() != nil {
		return cancelledResult("save_memory")
	}

	if err := t.store.Remember(ctx, req.Fact); err != nil {
		return NewErrorResult(fmt.Sprintf("failed to save memory: %s", err))
	}
	return NewSuccessResult(fmt.Sprintf("Fact saved to memory: '%s'.", req.Fact))
}

package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"shellmind/internal/logging"
)

// Registry manages the collection of available tools.
type Registry struct {
	tools map[string]Tool
	order []string
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry. Names must be unique.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// MustRegister adds a tool to the registry and logs a warning on error.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		logging.Warn("failed to register tool", "tool", tool.Name(), "error", err)
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// List returns tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Schemas returns a descriptor per tool in registration order.
func (r *Registry) Schemas() []Descriptor {
	tools := r.List()
	descriptors := make([]Descriptor, 0, len(tools))
	for _, tool := range tools {
		descriptors = append(descriptors, DescriptorOf(tool))
	}
	return descriptors
}

// Declarations returns all function declarations in registration order.
func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	tools := r.List()
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		declarations = append(declarations, tool.Declaration())
	}
	return declarations
}

// Discover loads tools from dynamic sources. No sources exist yet, so it
// only honours cancellation.
func (r *Registry) Discover(ctx context.Context) error {
	return ctx.Err()
}

// Descriptor is the advertised identity and parameter schema of a tool.
type Descriptor struct {
	Name        string
	DisplayName string
	Description string
	Parameters  *genai.Schema
}

// DescriptorOf builds the Descriptor of tool.
func DescriptorOf(tool Tool) Descriptor {
	var params *genai.Schema
	if decl := tool.Declaration(); decl != nil {
		params = decl.Parameters
	}
	return Descriptor{
		Name:        tool.Name(),
		DisplayName: tool.DisplayName(),
		Description: tool.Description(),
		Parameters:  params,
	}
}

// JSONSchema renders the parameters as a JSON-Schema object:
// {"type":"object","properties":{...},"required":[...]}.
func (d Descriptor) JSONSchema() map[string]any {
	if d.Parameters == nil {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []string{},
		}
	}
	out := schemaToJSON(d.Parameters)
	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	if _, ok := out["required"]; !ok {
		out["required"] = []string{}
	}
	return out
}

func schemaToJSON(s *genai.Schema) map[string]any {
	out := map[string]any{}
	if s.Type != "" {
		out["type"] = strings.ToLower(string(s.Type))
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Items != nil {
		out["items"] = schemaToJSON(s.Items)
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = schemaToJSON(prop)
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

// Package prompt builds the system instruction sent with every backend call.
package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shellmind/internal/logging"
	"shellmind/internal/memory"
	"shellmind/internal/tools"
)

// responseFormat tells the model which reply shapes the interpreter accepts.
const responseFormat = `## Response Format

Reply in exactly one of these forms:

1. A single shell command on one line, with no explanation and no code fences.
   Example: ls -la
2. A single tool call on one line: tool_name({"arg": "value"}) where the argument is a JSON object.
   Example: read_file({"absolute_path": "/etc/hostname"})
3. An informational answer spanning more than one line, when no command or tool is appropriate.

Never combine forms. Every command and tool call is shown to the user for confirmation before it runs.`

// maxFacts bounds how many remembered facts are injected.
const maxFacts = 50

// DescriptorSource provides the tools advertised to the model.
type DescriptorSource interface {
	Schemas() []tools.Descriptor
}

// FactSource provides remembered facts.
type FactSource interface {
	List(ctx context.Context) ([]memory.Entry, error)
}

// Builder builds the system instruction.
type Builder struct {
	base    string
	workDir string
	tools   DescriptorSource
	facts   FactSource
}

// NewBuilder creates a builder on top of the configured base prompt.
func NewBuilder(base string, tools DescriptorSource) *Builder {
	return &Builder{base: base, tools: tools}
}

// SetWorkDir sets the working directory reported to the model.
func (b *Builder) SetWorkDir(dir string) {
	b.workDir = dir
}

// SetFactSource sets the store of remembered facts.
func (b *Builder) SetFactSource(src FactSource) {
	b.facts = src
}

// Build constructs the full system instruction.
func (b *Builder) Build(ctx context.Context) string {
	var builder strings.Builder

	builder.WriteString(strings.TrimSpace(b.base))
	builder.WriteString("\n\n")
	builder.WriteString(responseFormat)

	if section := b.toolSection(); section != "" {
		builder.WriteString("\n\n")
		builder.WriteString(section)
	}

	if section := b.factSection(ctx); section != "" {
		builder.WriteString("\n\n")
		builder.WriteString(section)
	}

	if b.workDir != "" {
		fmt.Fprintf(&builder, "\n\nThe user's working directory is: %s", b.workDir)
	}

	return builder.String()
}

func (b *Builder) toolSection() string {
	if b.tools == nil {
		return ""
	}
	descriptors := b.tools.Schemas()
	if len(descriptors) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString("## Available Tools\n")
	for _, d := range descriptors {
		schema, err := json.Marshal(d.JSONSchema())
		if err != nil {
			logging.Warn("failed to render tool schema", "tool", d.Name, "error", err)
			continue
		}
		fmt.Fprintf(&builder, "\n- %s: %s\n  Parameters: %s", d.Name, d.Description, schema)
	}
	return builder.String()
}

func (b *Builder) factSection(ctx context.Context) string {
	if b.facts == nil {
		return ""
	}
	entries, err := b.facts.List(ctx)
	if err != nil {
		logging.Warn("failed to load remembered facts", "error", err)
		return ""
	}
	if len(entries) == 0 {
		return ""
	}
	if len(entries) > maxFacts {
		entries = entries[len(entries)-maxFacts:]
	}

	var builder strings.Builder
	builder.WriteString("## Remembered Facts\n")
	for _, e := range entries {
		builder.WriteString("\n- ")
		builder.WriteString(e.Content)
	}
	return builder.String()
}

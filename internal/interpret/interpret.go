// Package interpret classifies raw backend replies into actions.
//
// The grammar is deliberately small. A reply containing a newline is prose.
// A single line shaped like name(arguments) is a tool call when name is a
// registered tool. Anything else is a shell command line.
package interpret

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"shellmind/internal/logging"
)

// Kind tags the classification of a reply.
type Kind int

const (
	KindMessage Kind = iota
	KindToolInvocation
	KindUnknownTool
	KindShellCommand
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindToolInvocation:
		return "tool_invocation"
	case KindUnknownTool:
		return "unknown_tool"
	case KindShellCommand:
		return "shell_command"
	default:
		return "unknown"
	}
}

// Action is a classified reply.
type Action struct {
	Kind Kind

	// Text is the reply as received.
	Text string

	// ToolName and Args are set for KindToolInvocation and KindUnknownTool.
	ToolName string
	Args     map[string]any

	// ParseError is set when the arguments could not be decoded and Args
	// fell back to an empty set.
	ParseError error
}

// ToolLookup reports whether a tool name is registered.
type ToolLookup interface {
	Has(name string) bool
}

var callPattern = regexp.MustCompile(`(?s)^([a-zA-Z_]+)\((.*)\)$`)

// Interpreter classifies replies against a set of known tools.
type Interpreter struct {
	tools ToolLookup
}

// New creates an Interpreter.
func New(tools ToolLookup) *Interpreter {
	return &Interpreter{tools: tools}
}

// Classify turns text into an Action.
func (i *Interpreter) Classify(text string) Action {
	if strings.Contains(text, "\n") {
		return Action{Kind: KindMessage, Text: text}
	}

	m := callPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Action{Kind: KindShellCommand, Text: text}
	}

	name, raw := m[1], m[2]
	if i.tools == nil || !i.tools.Has(name) {
		return Action{Kind: KindUnknownTool, Text: text, ToolName: name}
	}

	args, err := ParseArgs(raw)
	if err != nil {
		logging.Debug("tool arguments not parsed, using empty set", "tool", name, "error", err)
	}
	return Action{
		Kind:       KindToolInvocation,
		Text:       text,
		ToolName:   name,
		Args:       args,
		ParseError: err,
	}
}

// UnknownToolError reports a call to a name that is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "Unknown tool: " + e.Name
}

// ParseError describes arguments that are not a JSON object.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return "invalid tool arguments: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseArgs decodes raw as a JSON object. Blank input is an empty set.
// On failure it returns an empty, non-nil map together with a *ParseError.
func ParseArgs(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}, &ParseError{Raw: raw, Err: err}
	}
	if args == nil {
		// "null" decodes without error.
		return map[string]any{}, &ParseError{Raw: raw, Err: errNotObject}
	}
	return args, nil
}

var errNotObject = errors.New("arguments are not a JSON object")

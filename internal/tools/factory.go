package tools

import "time"

// Deps holds everything the built-in tools need.
type Deps struct {
	// WorkDir resolves relative paths. Empty means the process working directory.
	WorkDir string
	Runner  CommandRunner
	Memory  FactStore

	FetchTimeout  time.Duration
	MaxFetchBytes int64
	Search        WebSearchConfig
}

// ToolFactory creates a tool instance from deps.
type ToolFactory func(Deps) Tool

// builtinFactories lists the built-in tools in registration order.
var builtinFactories = []ToolFactory{
	func(d Deps) Tool { return NewReadFileTool(d.WorkDir) },
	func(d Deps) Tool { return NewWriteFileTool(d.WorkDir) },
	func(d Deps) Tool { return NewEditFileTool(d.WorkDir) },
	func(d Deps) Tool { return NewListDirTool(d.WorkDir) },
	func(d Deps) Tool { return NewSearchTool(d.WorkDir) },
	func(d Deps) Tool { return NewGlobTool(d.WorkDir) },
	func(d Deps) Tool { return NewShellTool(d.Runner) },
	func(d Deps) Tool { return NewWebFetchTool(d.FetchTimeout, d.MaxFetchBytes) },
	func(d Deps) Tool { return NewWebSearchTool(d.Search) },
	func(d Deps) Tool { return NewMemorizeTool(d.Memory) },
	func(d Deps) Tool { return NewReadManyFilesTool(d.WorkDir) },
}

// DefaultRegistry returns a registry holding every built-in tool.
func DefaultRegistry(deps Deps) *Registry {
	r := NewRegistry()
	for _, factory := range builtinFactories {
		r.MustRegister(factory(deps))
	}
	return r
}

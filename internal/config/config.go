package config

import "time"

// Config represents the main application configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Model      ModelConfig      `yaml:"model"`
	Permission PermissionConfig `yaml:"permission"`
	Shell      ShellConfig      `yaml:"shell"`
	Web        WebConfig        `yaml:"web"`
	Memory     MemoryConfig     `yaml:"memory"`
	Session    SessionConfig    `yaml:"session"`
	Logging    LoggingConfig    `yaml:"logging"`
	Audit      AuditConfig      `yaml:"audit"`
	UI         UIConfig         `yaml:"ui"`

	// Runtime version information
	Version string `yaml:"-"`

	// path is where Save writes. Empty means the default location.
	path string

	// stored is the file layer: defaults plus the file as written, without
	// env expansion or overrides. Save persists only this.
	stored *Config
}

// clone returns a deep copy of the persisted fields.
func (c *Config) clone() *Config {
	cp := *c
	cp.stored = nil
	cp.Permission.AllowedCommands = append([]string(nil), c.Permission.AllowedCommands...)
	return &cp
}

// API types accepted in api.api_type.
const (
	APITypeREST   = "rest"
	APITypeGRPC   = "grpc"
	APITypeOllama = "ollama"
)

// APIConfig holds backend connection settings.
type APIConfig struct {
	APIKey string `yaml:"api_key,omitempty"`

	// Type selects the backend transport: rest, grpc or ollama.
	Type string `yaml:"api_type"`

	// Host is used to build the REST URL. A value with an explicit scheme
	// (http://127.0.0.1:8080) is used as the base URL verbatim.
	Host string `yaml:"api_host"`

	GRPCEndpoint string `yaml:"grpc_endpoint"`
	OllamaHost   string `yaml:"ollama_host"`

	// Timeout bounds a single backend round trip. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
}

// ModelConfig holds model settings.
type ModelConfig struct {
	Name         string  `yaml:"model_name"`
	Temperature  float32 `yaml:"temperature"`
	SystemPrompt string  `yaml:"system_prompt"`
}

// PermissionConfig holds the shell command allow-list.
type PermissionConfig struct {
	AllowedCommands []string `yaml:"allowed_commands,omitempty"`

	// AutoApproveAllowed skips the shell prompt for exact allow-list matches.
	AutoApproveAllowed bool `yaml:"auto_approve_allowed"`
}

// ShellConfig holds shell execution settings.
type ShellConfig struct {
	// Timeout for a single command. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
	// MaxOutput caps the captured output in bytes.
	MaxOutput int `yaml:"max_output"`
	// Sandbox requests isolated execution where the platform supports it.
	Sandbox bool `yaml:"sandbox"`
}

// WebConfig holds web fetch and search settings.
type WebConfig struct {
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	MaxFetchBytes int64         `yaml:"max_fetch_bytes"`
	SearchAPIKey  string        `yaml:"search_api_key,omitempty"`
	SearchCX      string        `yaml:"search_cx,omitempty"`
	// SearchRate is the number of searches allowed per second.
	SearchRate float64 `yaml:"search_rate"`
}

// MemoryConfig holds save_memory settings.
type MemoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SessionConfig holds interactive session settings.
type SessionConfig struct {
	HistoryFile     string `yaml:"history_file"`
	TranscriptDir   string `yaml:"transcript_dir"`
	SaveTranscripts bool   `yaml:"save_transcripts"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  bool   `yaml:"file"`
}

// AuditConfig holds audit log settings.
type AuditConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxResult  int    `yaml:"max_result"`
	MaxEntries int    `yaml:"max_entries"`
}

// UIConfig holds console rendering settings.
type UIConfig struct {
	Markdown  bool   `yaml:"markdown"`
	Highlight bool   `yaml:"highlight"`
	Theme     string `yaml:"theme"`
}

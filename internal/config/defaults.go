package config

import (
	"os"
	"path/filepath"
	"time"
)

const appName = "shellmind"

// Default configuration values.
const (
	DefaultModel        = "gemini-1.5-flash"
	DefaultTemperature  = 0.2
	DefaultAPIHost      = "generativelanguage.googleapis.com"
	DefaultGRPCEndpoint = "https://generativelanguage.googleapis.com"
	DefaultOllamaHost   = "http://localhost:11434"
	DefaultAPITimeout   = 120 * time.Second

	DefaultSystemPrompt = "You are Shellmind, a helpful AI assistant that translates natural language into shell commands. You are running on a Linux system."

	DefaultShellMaxOutput = 30000
	DefaultFetchTimeout   = 30 * time.Second
	DefaultMaxFetchBytes  = 1 << 20
	DefaultSearchRate     = 1.0

	DefaultAuditMaxResult  = 1000
	DefaultAuditMaxEntries = 10000
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	dataDir := DataDir()

	return &Config{
		API: APIConfig{
			Type:         APITypeREST,
			Host:         DefaultAPIHost,
			GRPCEndpoint: DefaultGRPCEndpoint,
			OllamaHost:   DefaultOllamaHost,
			Timeout:      DefaultAPITimeout,
		},
		Model: ModelConfig{
			Name:         DefaultModel,
			Temperature:  DefaultTemperature,
			SystemPrompt: DefaultSystemPrompt,
		},
		Shell: ShellConfig{
			MaxOutput: DefaultShellMaxOutput,
		},
		Web: WebConfig{
			FetchTimeout:  DefaultFetchTimeout,
			MaxFetchBytes: DefaultMaxFetchBytes,
			SearchRate:    DefaultSearchRate,
		},
		Memory: MemoryConfig{
			Enabled: true,
			Path:    joinIfSet(dataDir, "memory.db"),
		},
		Session: SessionConfig{
			HistoryFile:     joinIfSet(dataDir, "command_history"),
			TranscriptDir:   joinIfSet(dataDir, "sessions"),
			SaveTranscripts: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Audit: AuditConfig{
			Enabled:    true,
			Path:       joinIfSet(dataDir, "audit.jsonl"),
			MaxResult:  DefaultAuditMaxResult,
			MaxEntries: DefaultAuditMaxEntries,
		},
		UI: UIConfig{
			Markdown:  true,
			Highlight: true,
			Theme:     "monokai",
		},
	}
}

// ConfigDir returns the directory holding config.yaml and the log file.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the directory for history, transcripts and stores.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", appName)
}

func joinIfSet(dir, name string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"shellmind/internal/fileutil"
)

// Load loads configuration from path, or from the default location when
// path is empty, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}
	cfg.path = path

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			// Config file is optional
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	cfg.stored = cfg.clone()
	expandEnvFields(cfg)
	loadFromEnv(cfg)

	return cfg, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Path returns the file Save writes to.
func (c *Config) Path() string {
	if c.path != "" {
		return c.path
	}
	return DefaultPath()
}

// SetPath overrides the file Save writes to.
func (c *Config) SetPath(path string) {
	c.path = path
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// expandEnvFields expands ${VAR} in endpoint, secret and path fields.
// Commands and prompts are kept verbatim.
func expandEnvFields(cfg *Config) {
	for _, field := range []*string{
		&cfg.API.APIKey,
		&cfg.API.Host,
		&cfg.API.GRPCEndpoint,
		&cfg.API.OllamaHost,
		&cfg.Web.SearchAPIKey,
		&cfg.Web.SearchCX,
		&cfg.Memory.Path,
		&cfg.Session.HistoryFile,
		&cfg.Session.TranscriptDir,
		&cfg.Audit.Path,
	} {
		*field = os.ExpandEnv(*field)
	}
}

// loadFromEnv applies environment overrides.
// API key priority: SHELLMIND_API_KEY > GEMINI_API_KEY.
func loadFromEnv(cfg *Config) {
	if apiKey := os.Getenv("SHELLMIND_API_KEY"); apiKey != "" {
		cfg.API.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.API.APIKey = apiKey
	}

	if model := os.Getenv("SHELLMIND_MODEL"); model != "" {
		cfg.Model.Name = model
	}
	if apiType := os.Getenv("SHELLMIND_API_TYPE"); apiType != "" {
		cfg.API.Type = strings.ToLower(apiType)
	}
	if host := os.Getenv("SHELLMIND_API_HOST"); host != "" {
		cfg.API.Host = host
	}
	if endpoint := os.Getenv("SHELLMIND_GRPC_ENDPOINT"); endpoint != "" {
		cfg.API.GRPCEndpoint = endpoint
	}
	if host := os.Getenv("SHELLMIND_OLLAMA_HOST"); host != "" {
		cfg.API.OllamaHost = host
	}
	if level := os.Getenv("SHELLMIND_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// ConfigError is a configuration problem that prevents startup.
type ConfigError string

func (e ConfigError) Error() string {
	return string(e)
}

const (
	ErrMissingAuth        ConfigError = "missing API key: set GEMINI_API_KEY or run 'shellmind config set api_key <key>'"
	ErrMissingModel       ConfigError = "missing model name: run 'shellmind config set model_name <name>'"
	ErrInvalidAPIType     ConfigError = "invalid api_type: use 'rest', 'grpc' or 'ollama'"
	ErrInvalidTemperature ConfigError = "invalid temperature: must be between 0 and 2"
	ErrMissingEndpoint    ConfigError = "missing backend endpoint for the selected api_type"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.API.Type {
	case APITypeREST:
		if c.API.Host == "" {
			return ErrMissingEndpoint
		}
	case APITypeGRPC:
		if c.API.GRPCEndpoint == "" {
			return ErrMissingEndpoint
		}
	case APITypeOllama:
		if c.API.OllamaHost == "" {
			return ErrMissingEndpoint
		}
	default:
		return ErrInvalidAPIType
	}

	// Local ollama servers need no key.
	if c.API.Type != APITypeOllama && c.API.APIKey == "" {
		return ErrMissingAuth
	}
	if c.Model.Name == "" {
		return ErrMissingModel
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return ErrInvalidTemperature
	}
	return nil
}

// Save writes the file layer to Path. Values that came from the
// environment, env expansion or flag overrides are not written.
func (c *Config) Save() error {
	configPath := c.Path()
	if configPath == "" {
		return fmt.Errorf("could not determine config path")
	}

	// 0700: the file holds the API key
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	persisted := c.stored
	if persisted == nil {
		persisted = c
	}
	data, err := yaml.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fileutil.AtomicWrite(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Keys accepted by Set, in display order.
var SettableKeys = []string{
	"api_key",
	"model_name",
	"temperature",
	"api_type",
	"api_host",
	"grpc_endpoint",
	"ollama_host",
	"system_prompt",
	"log_level",
}

// Set assigns a single configuration value by key. The change is also
// recorded in the file layer so Save persists it.
func (c *Config) Set(key, value string) error {
	if err := c.set(key, value); err != nil {
		return err
	}
	if c.stored != nil {
		return c.stored.set(key, value)
	}
	return nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "api_key":
		c.API.APIKey = value
	case "model_name":
		c.Model.Name = value
	case "temperature":
		t, err := strconv.ParseFloat(value, 32)
		if err != nil || t < 0 || t > 2 {
			return ErrInvalidTemperature
		}
		c.Model.Temperature = float32(t)
	case "api_type":
		v := strings.ToLower(value)
		switch v {
		case APITypeREST, APITypeGRPC, APITypeOllama:
			c.API.Type = v
		default:
			return ErrInvalidAPIType
		}
	case "api_host":
		c.API.Host = value
	case "grpc_endpoint":
		c.API.GRPCEndpoint = value
	case "ollama_host":
		c.API.OllamaHost = value
	case "system_prompt":
		c.Model.SystemPrompt = value
	case "log_level":
		c.Logging.Level = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// MaskedKey returns the API key suitable for display.
func (c *Config) MaskedKey() string {
	if c.API.APIKey == "" {
		return "Not set"
	}
	return "********"
}

// IsCommandAllowed reports whether command is an exact allow-list entry.
func (c *Config) IsCommandAllowed(command string) bool {
	for _, existing := range c.Permission.AllowedCommands {
		if existing == command {
			return true
		}
	}
	return false
}

// AddAllowedCommand appends command to the allow-list if not already present.
// Entries are exact strings and are never removed here.
func (c *Config) AddAllowedCommand(command string) bool {
	if command == "" || c.IsCommandAllowed(command) {
		return false
	}
	c.Permission.AllowedCommands = append(c.Permission.AllowedCommands, command)
	if c.stored != nil && !c.stored.IsCommandAllowed(command) {
		c.stored.Permission.AllowedCommands = append(c.stored.Permission.AllowedCommands, command)
	}
	return true
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"SHELLMIND_API_KEY", "GEMINI_API_KEY", "SHELLMIND_MODEL", "SHELLMIND_API_TYPE",
		"SHELLMIND_API_HOST", "SHELLMIND_GRPC_ENDPOINT", "SHELLMIND_OLLAMA_HOST", "SHELLMIND_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.Model.Name)
	assert.InDelta(t, DefaultTemperature, cfg.Model.Temperature, 0.0001)
	assert.Equal(t, APITypeREST, cfg.API.Type)
	assert.Equal(t, DefaultGRPCEndpoint, cfg.API.GRPCEndpoint)
	assert.Equal(t, path, cfg.Path())
	assert.False(t, cfg.Permission.AutoApproveAllowed)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "from-gemini-env")
	t.Setenv("SHELLMIND_MODEL", "gemini-2.0-flash")
	t.Setenv("MY_ENDPOINT", "http://localhost:9000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  api_type: grpc
  grpc_endpoint: ${MY_ENDPOINT}
model:
  temperature: 0.7
permission:
  allowed_commands:
    - ls -la
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-gemini-env", cfg.API.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model.Name)
	assert.Equal(t, APITypeGRPC, cfg.API.Type)
	assert.Equal(t, "http://localhost:9000", cfg.API.GRPCEndpoint)
	assert.InDelta(t, 0.7, cfg.Model.Temperature, 0.0001)
	assert.Equal(t, []string{"ls -la"}, cfg.Permission.AllowedCommands)
}

func TestLoadPrefersShellmindKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini")
	t.Setenv("SHELLMIND_API_KEY", "shellmind")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "shellmind", cfg.API.APIKey)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"valid", func(c *Config) { c.API.APIKey = "k" }, nil},
		{"missing key", func(c *Config) {}, ErrMissingAuth},
		{"ollama needs no key", func(c *Config) { c.API.Type = APITypeOllama }, nil},
		{"bad type", func(c *Config) { c.API.APIKey = "k"; c.API.Type = "soap" }, ErrInvalidAPIType},
		{"no model", func(c *Config) { c.API.APIKey = "k"; c.Model.Name = "" }, ErrMissingModel},
		{"bad temperature", func(c *Config) { c.API.APIKey = "k"; c.Model.Temperature = 3 }, ErrInvalidTemperature},
		{"no grpc endpoint", func(c *Config) { c.API.APIKey = "k"; c.API.Type = APITypeGRPC; c.API.GRPCEndpoint = "" }, ErrMissingEndpoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("api_key", "abc"))
	require.NoError(t, cfg.Set("api_type", "GRPC"))
	require.NoError(t, cfg.Set("temperature", "1.5"))
	require.NoError(t, cfg.Set("system_prompt", "be brief"))

	assert.Equal(t, "abc", cfg.API.APIKey)
	assert.Equal(t, APITypeGRPC, cfg.API.Type)
	assert.InDelta(t, 1.5, cfg.Model.Temperature, 0.0001)
	assert.Equal(t, "be brief", cfg.Model.SystemPrompt)

	assert.ErrorIs(t, cfg.Set("temperature", "hot"), ErrInvalidTemperature)
	assert.ErrorIs(t, cfg.Set("api_type", "soap"), ErrInvalidAPIType)
	assert.Error(t, cfg.Set("colour", "blue"))
}

func TestAllowListSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.AddAllowedCommand("rm -rf /tmp/test"))
	assert.False(t, cfg.AddAllowedCommand("rm -rf /tmp/test"))
	require.NoError(t, cfg.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, reloaded.IsCommandAllowed("rm -rf /tmp/test"))
	assert.False(t, reloaded.IsCommandAllowed("rm -rf /tmp"))
}

func TestMaskedKey(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "Not set", cfg.MaskedKey())
	cfg.API.APIKey = "secret"
	assert.Equal(t, "********", cfg.MaskedKey())
}

func TestAllowListKeepsDollarSignsAcrossReload(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "/home/someone")
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Set("system_prompt", "costs are in $USD"))
	assert.True(t, cfg.AddAllowedCommand("echo $HOME"))
	require.NoError(t, cfg.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo $HOME"}, reloaded.Permission.AllowedCommands)
	assert.True(t, reloaded.IsCommandAllowed("echo $HOME"))
	assert.False(t, reloaded.IsCommandAllowed("echo /home/someone"))
	assert.Equal(t, "costs are in $USD", reloaded.Model.SystemPrompt)
}

func TestSaveDoesNotPersistOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-secret-key")
	t.Setenv("SHELLMIND_API_TYPE", "ollama")
	t.Setenv("MY_ENDPOINT", "http://localhost:9000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  grpc_endpoint: ${MY_ENDPOINT}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Model.Name = "flag-model"
	assert.Equal(t, "http://localhost:9000", cfg.API.GRPCEndpoint)

	assert.True(t, cfg.AddAllowedCommand("ls -la"))
	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	saved := string(data)
	assert.NotContains(t, saved, "env-secret-key")
	assert.NotContains(t, saved, "api_type: ollama")
	assert.Contains(t, saved, "api_type: rest")
	assert.NotContains(t, saved, "flag-model")
	assert.Contains(t, saved, "${MY_ENDPOINT}")
	assert.Contains(t, saved, "ls -la")

	// The live config keeps its overrides.
	assert.Equal(t, "env-secret-key", cfg.API.APIKey)
	assert.Equal(t, APITypeOllama, cfg.API.Type)

	clearEnv(t)
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, reloaded.API.APIKey)
	assert.Equal(t, APITypeREST, reloaded.API.Type)
	assert.Equal(t, DefaultModel, reloaded.Model.Name)
	assert.True(t, reloaded.IsCommandAllowed("ls -la"))
}

func TestSetIsPersisted(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHELLMIND_MODEL", "env-model")
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Set("api_key", "set-key"))
	require.NoError(t, cfg.Set("api_type", "grpc"))
	require.NoError(t, cfg.Save())

	clearEnv(t)
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "set-key", reloaded.API.APIKey)
	assert.Equal(t, APITypeGRPC, reloaded.API.Type)
	assert.Equal(t, DefaultModel, reloaded.Model.Name)
}

func TestSaveKeepsExistingFileMode(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  temperature: 0.5\n"), 0640))

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.AddAllowedCommand("pwd")
	require.NoError(t, cfg.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

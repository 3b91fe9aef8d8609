package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightlens/freightlens/internal/domain"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "test-key"
	cfg.Convert.Remote.Secret = "test-secret"
	return cfg
}

func TestValidate_MissingLLMKeyIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
}

func TestValidate_MissingConvertSecretIsFatalForRemote(t *testing.T) {
	cfg := validConfig()
	cfg.Convert.Remote.Secret = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
}

func TestValidate_LocalProviderNeedsNoSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Convert.Provider = "local"
	cfg.Convert.Remote.Secret = ""

	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsUnknownDrivers(t *testing.T) {
	cfg := validConfig()
	cfg.Convert.Provider = "ftp"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Session.Store = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
convert:
  provider: local
llm:
  model: test/model-a
session:
  store: memory
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("LLM_MODEL", "test/model-b")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "local", cfg.Convert.Provider)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	// Env beats YAML.
	assert.Equal(t, "test/model-b", cfg.LLM.Model)
}

func TestLoad_APITokenEnablesAuth(t *testing.T) {
	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("CONVERT_API_SECRET", "env-secret")
	t.Setenv("FREIGHTLENS_API_TOKEN", "tok")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "tok", cfg.Auth.Token)
}

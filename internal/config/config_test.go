package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BUDGETBOOK_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	require.Equal(t, 15*time.Second, cfg.API.Timeout)
	require.False(t, cfg.API.SecureConnection)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, "Asia/Seoul", cfg.UI.Timezone)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := []byte(`
[api]
base_url = "https://budget.example.com/api/"
timeout = "3s"

[ui]
timezone = "UTC"
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("BUDGETBOOK_CONFIG", path)
	t.Setenv("BUDGETBOOK_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://budget.example.com/api", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, time.UTC, cfg.Location())
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api\nbase_url ="), 0o600))
	t.Setenv("BUDGETBOOK_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}

func TestSetPersistsSecureConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("BUDGETBOOK_CONFIG", path)

	cfg, err := Set("secure_connection", "true")
	require.NoError(t, err)
	require.True(t, cfg.API.SecureConnection)

	reloaded, err := Load()
	require.NoError(t, err)
	require.True(t, reloaded.API.SecureConnection)
	require.Equal(t, "http://localhost:8080/api", reloaded.API.BaseURL)
}

func TestSetDoesNotPersistEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("BUDGETBOOK_CONFIG", path)
	t.Setenv("BUDGETBOOK_LOG_LEVEL", "debug")
	t.Setenv("BUDGETBOOK_API_BASE_URL", "http://override.invalid/api")

	cfg, err := Set("ui.timezone", "UTC")
	require.NoError(t, err)
	require.Equal(t, "UTC", cfg.UI.Timezone)
	require.Equal(t, "info", cfg.Log.Level)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "debug")
	require.NotContains(t, string(raw), "override.invalid")
	require.Contains(t, string(raw), "UTC")
}

func TestSetUnknownKey(t *testing.T) {
	t.Setenv("BUDGETBOOK_CONFIG", filepath.Join(t.TempDir(), "config.toml"))

	_, err := Set("llm.api_key", "nope")
	require.Error(t, err)
}

func TestLocationFallback(t *testing.T) {
	t.Parallel()

	cfg := Config{UI: UIConfig{Timezone: "Not/AZone"}}
	require.Equal(t, time.Local, cfg.Location())
}

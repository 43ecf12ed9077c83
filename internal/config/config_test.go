package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "acolyte_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromPath_FileValues(t *testing.T) {
	path := writeConfig(t, `
databaseURL: postgres://localhost:5432/scheduler
listenAddr: ":9090"
timezone: America/Sao_Paulo
environment: production
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost:5432/scheduler", cfg.DatabaseURL)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoadFromPath_Defaults(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, `databaseURL: postgres://db/x`))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadFromPath_EnvOverridesFile(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":7777")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := LoadFromPath(writeConfig(t, `
databaseURL: postgres://db/x
listenAddr: ":9090"
`))
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.ListenAddr)
	assert.Equal(t, "UTC", cfg.Timezone)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadFromPath_RejectsBadEnvironment(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, `environment: staging`))
	assert.Error(t, err)
}

func TestLoadFromPath_RejectsBadTimezone(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, `timezone: Mars/Olympus`))
	assert.Error(t, err)
}

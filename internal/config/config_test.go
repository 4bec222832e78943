package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/descstream/internal/content"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAddr, EnvAgentEndpoint, EnvLogLevel, EnvLogFormat, EnvDefaultLocale} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultAgentAddr, cfg.AgentAddr)
	assert.Equal(t, []string{"en_US", "fr_FR", "en_UK"}, cfg.Languages)
	assert.Equal(t, "en_US", cfg.DefaultLocale)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, DefaultChunkDelay, cfg.ChunkDelayDuration())
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeoutDuration())

	langs, def, err := cfg.Locales()
	require.NoError(t, err)
	assert.Equal(t, content.DefaultLanguages(), langs)
	assert.Equal(t, content.EnUS, def)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "descstream.yml", `
addr: ":7000"
agentEndpoint: http://localhost:9090
defaultLocale: fr-FR
languages: [fr_FR, en_US]
chunkDelay: 10ms
log:
  level: debug
  format: json
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "http://localhost:9090", cfg.AgentEndpoint)
	assert.Equal(t, 10*time.Millisecond, cfg.ChunkDelayDuration())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	langs, def, err := cfg.Locales()
	require.NoError(t, err)
	assert.Equal(t, []content.Locale{content.FrFR, content.EnUS}, langs)
	assert.Equal(t, content.FrFR, def)
}

func TestLoad_YAMLAlternateExtension(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "descstream.yaml", "addr: \":7001\"\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.Addr)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "descstream.yml", "addr: [unterminated\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "descstream.yml")
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "descstream.yml", "addr: \":7000\"\n")
	t.Setenv(EnvAddr, ":6000")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvDefaultLocale, "en_UK")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)

	_, def, err := cfg.Locales()
	require.NoError(t, err)
	assert.Equal(t, content.EnUK, def)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even when
	// empty, so the key must be absent.
	require.NoError(t, os.Unsetenv(EnvAgentEndpoint))
	t.Cleanup(func() { os.Unsetenv(EnvAgentEndpoint) })

	dir := t.TempDir()
	writeFile(t, dir, ".env", EnvAgentEndpoint+"=http://agent.local:9090\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://agent.local:9090", cfg.AgentEndpoint)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "default locale outside languages",
			cfg:     Config{Languages: []string{"en_US"}, DefaultLocale: "fr_FR"},
			wantErr: "default locale",
		},
		{
			name:    "empty language",
			cfg:     Config{Languages: []string{"en_US", " "}},
			wantErr: "empty entry",
		},
		{
			name:    "bad delay",
			cfg:     Config{ChunkDelay: "soon"},
			wantErr: "chunkDelay",
		},
		{
			name:    "negative timeout",
			cfg:     Config{RequestTimeout: "-1s"},
			wantErr: "requestTimeout",
		},
		{
			name:    "bad log format",
			cfg:     Config{Log: LogConfig{Format: "xml"}},
			wantErr: "log format",
		},
		{
			name: "valid",
			cfg:  Config{Languages: []string{"en_US", "fr_FR"}, DefaultLocale: "fr", ChunkDelay: "0s"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

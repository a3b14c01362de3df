package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edubot/llm"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ".edubot/edubot.db", cfg.Store.Path)
	assert.Equal(t, ".edubot/audit.log", cfg.Audit.LogPath)
	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, 5, cfg.Resources.MaxResults)
	assert.Equal(t, "info", cfg.Log.Level)

	chat, ok := cfg.LLMs[string(llm.PurposeChat)]
	require.True(t, ok)
	assert.Equal(t, "ollama", chat.Provider)
	assert.Equal(t, "llama3:latest", chat.Model)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ".edubot/edubot.db", cfg.Store.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileOverridesAndFillsGaps(t *testing.T) {
	content := `
store:
  path: /var/lib/edubot/data.db
llms:
  chat:
    provider: openai
    model: gpt-4o-mini
    base_url: https://api.example.com/v1
    api_key: secret
  generate:
    provider: ollama
    model: llama3:70b
audit:
  enabled: true
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/edubot/data.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Audit.Enabled)
	// Unset audit path still gets its default
	assert.Equal(t, ".edubot/audit.log", cfg.Audit.LogPath)

	chat := cfg.LLMs["chat"]
	assert.Equal(t, "openai", chat.Provider)
	assert.Equal(t, "gpt-4o-mini", chat.Model)

	gen := cfg.LLMs["generate"]
	assert.Equal(t, "ollama", gen.Provider)
	assert.Equal(t, "llama3:70b", gen.Model)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [not: valid"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

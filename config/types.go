package config

import (
	"edubot/llm"
)

// Config represents the application configuration
type Config struct {
	Store     StoreConfig               `yaml:"store"`
	LLMs      map[string]llm.Config     `yaml:"llms"` // keyed by purpose: chat, classify, generate
	Audit     AuditConfig               `yaml:"audit"`
	Resources ResourcesConfig           `yaml:"resources"`
	Log       LogConfig                 `yaml:"log"`
}

// StoreConfig defines where the SQLite database lives
type StoreConfig struct {
	Path string `yaml:"path"`
}

// AuditConfig defines audit trail settings
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	LogPath string `yaml:"log_path"`
}

// ResourcesConfig defines settings for the external-resource helpers
type ResourcesConfig struct {
	MaxResults  int    `yaml:"max_results"`
	ExternalURL string `yaml:"external_url,omitempty"` // translate/fact-check service
}

// LogConfig defines structured logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

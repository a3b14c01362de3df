package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"edubot/llm"
)

// Load reads the configuration file and fills in defaults. A missing
// path loads pure defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = ".edubot/edubot.db"
	}
	if cfg.Audit.LogPath == "" {
		cfg.Audit.LogPath = ".edubot/audit.log"
	}
	if cfg.Resources.MaxResults == 0 {
		cfg.Resources.MaxResults = 5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.LLMs == nil {
		cfg.LLMs = map[string]llm.Config{}
	}
	if _, ok := cfg.LLMs[string(llm.PurposeChat)]; !ok {
		cfg.LLMs[string(llm.PurposeChat)] = llm.Config{
			Provider:    "ollama",
			Model:       "llama3:latest",
			Temperature: 0.7,
		}
	}
}

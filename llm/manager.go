package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Manager manages multiple LLM clients for different purposes
type Manager struct {
	clients map[Purpose]Client
	configs map[Purpose]Config
	mu      sync.RWMutex
}

// NewManager creates a new LLM manager
func NewManager() *Manager {
	return &Manager{
		clients: make(map[Purpose]Client),
		configs: make(map[Purpose]Config),
	}
}

// RegisterLLM creates and registers an LLM for a specific purpose
// based on its provider configuration
func (m *Manager) RegisterLLM(purpose Purpose, config Config) error {
	var client Client
	var err error

	switch config.Provider {
	case "ollama":
		client, err = NewOllamaClient(config)
	case "openai":
		client, err = NewOpenAIClient(config)
	default:
		return fmt.Errorf("unsupported provider: %s", config.Provider)
	}

	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", config.Provider, err)
	}

	m.RegisterClient(purpose, config, client)
	return nil
}

// RegisterClient registers an already-constructed client for a purpose.
// Used directly in tests with mock clients.
func (m *Manager) RegisterClient(purpose Purpose, config Config, client Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[purpose] = config
	m.clients[purpose] = client
}

// GetClient returns the LLM client for a specific purpose
// If the requested client is not available, it falls back to the chat client
func (m *Manager) GetClient(purpose Purpose) (Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if client, ok := m.clients[purpose]; ok {
		return client, nil
	}

	// Fallback to chat client if available
	if purpose != PurposeChat {
		if chatClient, ok := m.clients[PurposeChat]; ok {
			return chatClient, nil
		}
	}

	return nil, fmt.Errorf("no LLM available for purpose %s: %w", purpose, ErrUnavailable)
}

// Timeout returns the per-call budget for a purpose: the configured value
// if set, otherwise a purpose-specific default
func (m *Manager) Timeout(purpose Purpose) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if cfg, ok := m.configs[purpose]; ok && cfg.Timeout > 0 {
		return cfg.Timeout
	}
	if purpose == PurposeGenerate {
		return GenerationTimeout
	}
	return DefaultTimeout
}

// Generate sends a request to the appropriate LLM based on purpose,
// applying the purpose's time budget to the call
func (m *Manager) Generate(ctx context.Context, purpose Purpose, req Request) (*Response, error) {
	client, err := m.GetClient(purpose)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, m.Timeout(purpose))
	defer cancel()

	return client.Generate(callCtx, req)
}

// IsAvailable checks if an LLM for the given purpose is available
func (m *Manager) IsAvailable(purpose Purpose) bool {
	m.mu.RLock()
	client, ok := m.clients[purpose]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return client.IsAvailable(ctx)
}

// GetConfig returns the configuration for a specific purpose
func (m *Manager) GetConfig(purpose Purpose) (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	config, ok := m.configs[purpose]
	return config, ok
}

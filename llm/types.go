package llm

import (
	"context"
	"errors"
	"time"
)

// Purpose defines the intended use case for an LLM
type Purpose string

const (
	PurposeChat     Purpose = "chat"     // Conversational replies
	PurposeClassify Purpose = "classify" // Intent classification
	PurposeGenerate Purpose = "generate" // Lecture and slide content generation
)

// Default time budgets per purpose. Generation calls are allowed to run
// much longer than classification or chat.
const (
	DefaultTimeout    = 30 * time.Second
	GenerationTimeout = 60 * time.Second
)

// ErrUnavailable reports that no completion backend could be reached.
var ErrUnavailable = errors.New("llm backend unavailable")

// Message represents a single message in a conversation
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// Request represents a request to an LLM
type Request struct {
	Messages    []Message      `json:"messages"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

// Response represents a response from an LLM
type Response struct {
	Content    string         `json:"content"`
	Model      string         `json:"model"`
	TokensUsed int            `json:"tokens_used,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Client defines the interface for interacting with LLM providers
type Client interface {
	// Generate sends a request to the LLM and returns a response
	Generate(ctx context.Context, req Request) (*Response, error)

	// GetModel returns the model name this client is using
	GetModel() string

	// GetProvider returns the provider name (e.g., "ollama", "openai")
	GetProvider() string

	// IsAvailable checks if the LLM is available and responding
	IsAvailable(ctx context.Context) bool
}

// Config represents configuration for a specific LLM instance
type Config struct {
	Provider    string         `yaml:"provider"`
	Model       string         `yaml:"model"`
	Temperature float64        `yaml:"temperature"`
	BaseURL     string         `yaml:"base_url,omitempty"`
	APIKey      string         `yaml:"api_key,omitempty"`
	Timeout     time.Duration  `yaml:"timeout,omitempty"` // Per-call budget; 0 uses the purpose default
	Options     map[string]any `yaml:"options,omitempty"`
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"edubot/ollama"
)

// OllamaClient implements the Client interface for Ollama
type OllamaClient struct {
	client      *ollama.Client
	model       string
	temperature float64
}

// NewOllamaClient creates a new Ollama client
func NewOllamaClient(config Config) (*OllamaClient, error) {
	client, err := ollama.NewClient(config.Model, config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return &OllamaClient{
		client:      client,
		model:       config.Model,
		temperature: config.Temperature,
	}, nil
}

// Generate sends a request to Ollama and returns the response.
// Conversational requests go through the chat endpoint so role structure
// is preserved; pure system prompts use the generate endpoint.
func (c *OllamaClient) Generate(ctx context.Context, req Request) (*Response, error) {
	// Collect the streamed response
	var responseContent strings.Builder
	handler := func(text string) {
		responseContent.WriteString(text)
	}

	var err error
	if conversational(req.Messages) {
		messages := make([]ollama.Message, 0, len(req.Messages))
		for _, msg := range req.Messages {
			messages = append(messages, ollama.Message{Role: msg.Role, Content: msg.Content})
		}
		err = c.client.Chat(ctx, messages, handler)
	} else {
		var systemPrompt string
		var promptBuilder strings.Builder
		for _, msg := range req.Messages {
			if msg.Role == "system" && systemPrompt == "" {
				systemPrompt = msg.Content
				continue
			}
			promptBuilder.WriteString(msg.Content)
			promptBuilder.WriteString("\n")
		}
		err = c.client.Generate(ctx, strings.TrimSpace(promptBuilder.String()), systemPrompt, handler)
	}
	if err != nil {
		return nil, fmt.Errorf("ollama generation error: %w", err)
	}

	return &Response{
		Content: responseContent.String(),
		Model:   c.model,
		Metadata: map[string]any{
			"temperature": c.temperature,
		},
	}, nil
}

// conversational reports whether the request carries user or assistant
// turns rather than a lone system prompt.
func conversational(messages []Message) bool {
	for _, msg := range messages {
		if msg.Role != "system" {
			return true
		}
	}
	return false
}

// GetModel returns the model name
func (c *OllamaClient) GetModel() string {
	return c.model
}

// GetProvider returns the provider name
func (c *OllamaClient) GetProvider() string {
	return "ollama"
}

// IsAvailable checks if Ollama is responding
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	return c.client.Ping(ctx) == nil
}

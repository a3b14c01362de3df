package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edubot/llm"
)

type stubClient struct {
	generateFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)
}

func (s *stubClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return s.generateFunc(ctx, req)
}

func (s *stubClient) GetModel() string                     { return "stub" }
func (s *stubClient) GetProvider() string                  { return "stub" }
func (s *stubClient) IsAvailable(ctx context.Context) bool { return true }

func managerWith(purpose llm.Purpose, client llm.Client) *llm.Manager {
	manager := llm.NewManager()
	manager.RegisterClient(purpose, llm.Config{Model: "stub"}, client)
	return manager
}

func replyWith(content string) *stubClient {
	return &stubClient{
		generateFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: content}, nil
		},
	}
}

func TestClassifyValidJSON(t *testing.T) {
	manager := managerWith(llm.PurposeClassify, replyWith(
		`{"intent": "create_lecture", "entities": {"subject": "Biology", "topic": "cells"}}`,
	))
	classifier := NewClassifier(manager)

	state := classifier.Classify(context.Background(), TurnState{Message: "Create a lecture about cells"})

	assert.Equal(t, IntentCreateLecture, state.Intent)
	assert.Equal(t, "Biology", state.Entities["subject"])
	assert.Equal(t, "cells", state.Entities["topic"])
}

func TestClassifyJSONWrappedInProse(t *testing.T) {
	manager := managerWith(llm.PurposeClassify, replyWith(
		"Sure, here is the analysis:\n```json\n{\"intent\": \"search\", \"entities\": {}}\n```",
	))
	classifier := NewClassifier(manager)

	state := classifier.Classify(context.Background(), TurnState{Message: "find my slides"})

	assert.Equal(t, IntentSearch, state.Intent)
}

func TestClassifyUnparseableDefaultsToChat(t *testing.T) {
	manager := managerWith(llm.PurposeClassify, replyWith("I cannot classify this."))
	classifier := NewClassifier(manager)

	state := classifier.Classify(context.Background(), TurnState{Message: "hello"})

	assert.Equal(t, IntentChat, state.Intent)
	assert.NotNil(t, state.Entities)
	assert.Empty(t, state.Entities)
}

func TestClassifyUnknownLabelDefaultsToChat(t *testing.T) {
	manager := managerWith(llm.PurposeClassify, replyWith(`{"intent": "make_coffee", "entities": {}}`))
	classifier := NewClassifier(manager)

	state := classifier.Classify(context.Background(), TurnState{Message: "hello"})

	assert.Equal(t, IntentChat, state.Intent)
}

func TestClassifyGatewayFailureDefaultsToChat(t *testing.T) {
	manager := managerWith(llm.PurposeClassify, &stubClient{
		generateFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return nil, errors.New("connection refused")
		},
	})
	classifier := NewClassifier(manager)

	state := classifier.Classify(context.Background(), TurnState{Message: "hello"})

	assert.Equal(t, IntentChat, state.Intent)
	assert.NotNil(t, state.Entities)
}

func TestClassifyIncludesRecentHistoryOnly(t *testing.T) {
	var prompt string
	manager := managerWith(llm.PurposeClassify, &stubClient{
		generateFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			require.Len(t, req.Messages, 2)
			prompt = req.Messages[1].Content
			return &llm.Response{Content: `{"intent": "chat", "entities": {}}`}, nil
		},
	})
	classifier := NewClassifier(manager)

	history := []HistoryTurn{
		{Sender: "user", Content: "oldest"},
		{Sender: "assistant", Content: "one"},
		{Sender: "user", Content: "two"},
		{Sender: "assistant", Content: "three"},
	}
	classifier.Classify(context.Background(), TurnState{Message: "now", History: history})

	assert.NotContains(t, prompt, "oldest")
	assert.Contains(t, prompt, "one")
	assert.Contains(t, prompt, "three")
	assert.Contains(t, prompt, "User message: now")
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		label string
		want  Intent
	}{
		{"create_lecture", IntentCreateLecture},
		{"create_slide", IntentCreateSlide},
		{"search", IntentSearch},
		{"chat", IntentChat},
		{"", IntentChat},
		{"garbage", IntentChat},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIntent(tt.label))
		})
	}
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "chat", IntentChat.String())
	assert.Equal(t, "create_lecture", IntentCreateLecture.String())
	assert.Equal(t, "create_slide", IntentCreateSlide.String())
	assert.Equal(t, "search", IntentSearch.String())
	assert.Equal(t, "unknown", Intent(42).String())
}

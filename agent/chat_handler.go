package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"edubot/llm"
)

// chatContextTurns is how many trailing history turns feed the chat prompt.
const chatContextTurns = 5

// ChatHandler answers ordinary conversation with a single completion
// call. It never invokes the generation pipeline.
type ChatHandler struct {
	llm *llm.Manager
}

// NewChatHandler creates the conversational handler
func NewChatHandler(manager *llm.Manager) *ChatHandler {
	return &ChatHandler{llm: manager}
}

func (h *ChatHandler) Name() string {
	return "chat_completion"
}

// Handle builds a prompt from recent history plus the message and sets
// the raw completion reply as the response.
func (h *ChatHandler) Handle(ctx context.Context, state TurnState) TurnState {
	resp, err := h.llm.Generate(ctx, llm.PurposeChat, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: h.systemPrompt(state)},
			{Role: "user", Content: state.Message},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("chat completion failed")
		state.Response = msgChatFailure
		state.Metadata = errorMetadata(err)
		return state
	}

	state.Response = resp.Content
	state.ToolsUsed = append(state.ToolsUsed, h.Name())
	return state
}

func (h *ChatHandler) systemPrompt(state TurnState) string {
	var context strings.Builder
	if len(state.History) > 0 {
		recent := state.History
		if len(recent) > chatContextTurns {
			recent = recent[len(recent)-chatContextTurns:]
		}
		for _, turn := range recent {
			fmt.Fprintf(&context, "%s: %s\n", turn.Sender, turn.Content)
		}
	}

	return fmt.Sprintf(`You are an AI assistant supporting teachers with lesson preparation. You can:

1. Advise on teaching methods
2. Suggest lecture content
3. Guide slide deck creation
4. Answer questions about education

Conversation context:
%s
Reply helpfully, warmly and professionally.`, context.String())
}

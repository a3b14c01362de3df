package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"edubot/extract"
	"edubot/llm"
)

// contextTurns is how many trailing history turns the classifier sees.
const contextTurns = 3

const classifyPrompt = `You are an AI assistant supporting teachers with lesson preparation. Analyze the user's message and determine the intent.

Possible intents:
- "create_lecture": wants to create a new lecture
- "create_slide": wants to create presentation slides
- "search": wants to find existing lectures or slides
- "chat": ordinary conversation or questions

Return JSON in this format:
{
    "intent": "intent_name",
    "entities": {
        "subject": "subject if present",
        "topic": "topic if present",
        "grade": "grade level if present"
    }
}`

// intentRecord is the classifier's structured-output schema.
type intentRecord struct {
	Intent   string            `json:"intent"`
	Entities map[string]string `json:"entities"`
}

// Classifier maps a free-text message to an intent plus extracted
// entities using a single completion call. It always resolves to a valid
// intent: any failure defaults to chat with empty entities.
type Classifier struct {
	llm *llm.Manager
}

// NewClassifier creates an intent classifier over the given gateway
func NewClassifier(manager *llm.Manager) *Classifier {
	return &Classifier{llm: manager}
}

// Classify fills the state's intent and entities. No retries: one
// completion call per classification.
func (c *Classifier) Classify(ctx context.Context, state TurnState) TurnState {
	state.Intent = IntentChat
	state.Entities = map[string]string{}

	resp, err := c.llm.Generate(ctx, llm.PurposeClassify, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: classifyPrompt},
			{Role: "user", Content: c.userPrompt(state)},
		},
	})
	if err != nil {
		// Classification failures are not surfaced; the turn proceeds
		// as chat.
		log.Warn().Err(err).Msg("intent classification call failed, defaulting to chat")
		return state
	}

	record, tier := extract.Object(resp.Content, intentRecord{Intent: "chat"})
	if tier == extract.TierSkeleton {
		log.Debug().Str("raw", resp.Content).Msg("classifier output unparseable, defaulting to chat")
	}

	state.Intent = ParseIntent(record.Intent)
	if record.Entities != nil {
		state.Entities = record.Entities
	}

	log.Info().Str("intent", state.Intent.String()).Msg("intent detected")
	return state
}

func (c *Classifier) userPrompt(state TurnState) string {
	var sb strings.Builder

	if len(state.History) > 0 {
		recent := state.History
		if len(recent) > contextTurns {
			recent = recent[len(recent)-contextTurns:]
		}
		sb.WriteString("Recent conversation:\n")
		for _, turn := range recent {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Sender, turn.Content)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "User message: %s", state.Message)
	return sb.String()
}

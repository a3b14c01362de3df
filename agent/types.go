// Package agent implements one conversational turn: intent classification,
// handler routing, task handling and response composition.
package agent

import "context"

// Intent represents the classified purpose of a user message
type Intent int

const (
	// IntentChat - ordinary conversation and Q&A
	IntentChat Intent = iota
	// IntentCreateLecture - the user wants a new lecture outline
	IntentCreateLecture
	// IntentCreateSlide - the user wants a slide deck
	IntentCreateSlide
	// IntentSearch - the user wants existing lectures or slides
	IntentSearch
)

// String returns the string representation of an intent
func (i Intent) String() string {
	switch i {
	case IntentChat:
		return "chat"
	case IntentCreateLecture:
		return "create_lecture"
	case IntentCreateSlide:
		return "create_slide"
	case IntentSearch:
		return "search"
	default:
		return "unknown"
	}
}

// ParseIntent maps a classifier label back to an Intent. Anything
// unrecognized resolves to chat.
func ParseIntent(label string) Intent {
	switch label {
	case "create_lecture":
		return IntentCreateLecture
	case "create_slide":
		return IntentCreateSlide
	case "search":
		return IntentSearch
	default:
		return IntentChat
	}
}

// HistoryTurn is one prior message in the conversation
type HistoryTurn struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// TurnState carries everything one conversational turn accumulates. It is
// passed by value: each pipeline stage returns a new state rather than
// mutating a shared one, so stage ordering stays explicit and testable.
// A stage that adds metadata allocates a fresh map first.
type TurnState struct {
	Message   string
	History   []HistoryTurn
	UserID    string
	Intent    Intent
	Entities  map[string]string
	Response  string
	ToolsUsed []string
	Metadata  map[string]any
}

// Handler owns one conversational capability. Handlers convert their own
// failures into a response string plus an error metadata flag; they never
// let an error escape to crash the turn.
type Handler interface {
	Name() string
	Handle(ctx context.Context, state TurnState) TurnState
}

package agent

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"edubot/audit"
	"edubot/generation"
	"edubot/llm"
	"edubot/store"
)

// TurnInput is the turn-processing entry point's request.
type TurnInput struct {
	Message string        `json:"message"`
	History []HistoryTurn `json:"history"`
	UserID  string        `json:"user_id,omitempty"`
}

// TurnOutput is the finished turn's reply envelope.
type TurnOutput struct {
	Reply    string         `json:"reply"`
	Metadata map[string]any `json:"metadata"`
}

// Orchestrator runs classifier -> router -> handler -> composer as one
// conversational turn. Turns for the same user are serialized by a keyed
// mutex; turns for different users run fully in parallel.
type Orchestrator struct {
	classifier *Classifier
	handlers   Handlers
	audit      *audit.Logger

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewOrchestrator wires the classifier and all task handlers over the
// given gateway, store and pipeline
func NewOrchestrator(manager *llm.Manager, st *store.Store, pipeline *generation.Pipeline, auditLog *audit.Logger) *Orchestrator {
	return &Orchestrator{
		classifier: NewClassifier(manager),
		handlers: Handlers{
			Chat:    NewChatHandler(manager),
			Lecture: NewLectureHandler(manager),
			Slide:   NewSlideHandler(manager, pipeline),
			Search:  NewSearchHandler(st),
		},
		audit:     auditLog,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// ProcessTurn runs one full conversational turn. It never returns an
// error: unexpected failures are logged with full context and converted
// to a generic apology.
func (o *Orchestrator) ProcessTurn(ctx context.Context, in TurnInput) (out TurnOutput) {
	started := time.Now()

	lock := o.lockFor(in.UserID)
	lock.Lock()
	defer lock.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Str("message", in.Message).Msg("turn processing panicked")
			out = TurnOutput{
				Reply:    msgUnavailable,
				Metadata: map[string]any{"error": true},
			}
		}
	}()

	state := TurnState{
		Message: in.Message,
		History: in.History,
		UserID:  in.UserID,
	}

	state = o.classifier.Classify(ctx, state)
	handler := Route(state.Intent, o.handlers)
	state = handler.Handle(ctx, state)
	state = compose(state)

	_ = o.audit.Log(audit.Entry{
		Event:     audit.EventTurn,
		UserID:    in.UserID,
		Intent:    state.Intent.String(),
		ToolsUsed: state.ToolsUsed,
		Duration:  time.Since(started),
	})

	return TurnOutput{
		Reply:    state.Response,
		Metadata: state.Metadata,
	}
}

// compose finalizes the turn: the response is never empty, and metadata
// passes through unchanged.
func compose(state TurnState) TurnState {
	if state.Response == "" {
		state.Response = msgClarify
	}
	if state.Metadata == nil {
		state.Metadata = map[string]any{}
	}
	return state
}

// lockFor returns the serialization lock for a user. Anonymous turns
// share one lock under an empty key.
func (o *Orchestrator) lockFor(userID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	lock, ok := o.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		o.userLocks[userID] = lock
	}
	return lock
}

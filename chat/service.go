// Package chat ties conversations to storage: it creates sessions,
// appends the turn's messages and invokes the orchestrator with the
// session's history as context.
package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"edubot/agent"
	"edubot/store"
)

// historyLimit is how many trailing messages are handed to the
// orchestrator as context.
const historyLimit = 10

// titleLimit caps the session title derived from the first message.
const titleLimit = 50

// MessageRequest is one inbound user message.
type MessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"` // empty starts a new session
	UserID    string `json:"user_id,omitempty"`
}

// MessageResponse is the assistant's persisted reply.
type MessageResponse struct {
	Reply     string         `json:"reply"`
	SessionID string         `json:"session_id"`
	MessageID string         `json:"message_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Service processes user messages end to end.
type Service struct {
	store *store.Store
	orch  *agent.Orchestrator
}

// NewService creates the session service
func NewService(st *store.Store, orch *agent.Orchestrator) *Service {
	return &Service{store: st, orch: orch}
}

// ProcessMessage persists the user message, runs one conversational turn
// and persists the assistant reply. Returns store.ErrNotFound when the
// referenced session does not exist.
func (s *Service) ProcessMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		var err error
		sessionID, err = s.store.CreateSession(req.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	} else {
		if _, err := s.store.GetSession(sessionID); err != nil {
			return nil, err
		}
	}

	if _, err := s.store.SaveMessage(store.ChatMessage{
		SessionID: sessionID,
		Content:   req.Message,
		Sender:    store.SenderUser,
	}); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	history, err := s.store.History(sessionID, 50)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to load history, proceeding without context")
		history = nil
	}

	out := s.orch.ProcessTurn(ctx, agent.TurnInput{
		Message: req.Message,
		History: historyTurns(history),
		UserID:  req.UserID,
	})

	msgType := "text"
	if t, ok := out.Metadata["type"].(string); ok && t == "lecture" {
		msgType = "lecture"
	}

	messageID, err := s.store.SaveMessage(store.ChatMessage{
		SessionID: sessionID,
		Content:   out.Reply,
		Sender:    store.SenderAssistant,
		Type:      msgType,
		Metadata:  out.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	// First exchange: derive the session title from the opening message.
	if len(history) == 1 {
		s.setTitleFrom(sessionID, req.Message)
	}

	return &MessageResponse{
		Reply:     out.Reply,
		SessionID: sessionID,
		MessageID: messageID,
		Metadata:  out.Metadata,
	}, nil
}

// History returns a session's messages, oldest first
func (s *Service) History(sessionID string, limit int) ([]store.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.History(sessionID, limit)
}

// Sessions lists a user's sessions, most recently active first
func (s *Service) Sessions(userID string, limit int) ([]store.ChatSession, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.ListSessions(userID, limit)
}

// Delete soft-deletes a session
func (s *Service) Delete(sessionID string) error {
	return s.store.DeleteSession(sessionID)
}

func (s *Service) setTitleFrom(sessionID, firstMessage string) {
	title := firstMessage
	if len(title) > titleLimit {
		title = title[:titleLimit] + "..."
	}
	if err := s.store.SetSessionTitle(sessionID, title); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to set session title")
	}
}

// historyTurns converts stored messages into the orchestrator's history
// shape, keeping only the trailing window.
func historyTurns(messages []store.ChatMessage) []agent.HistoryTurn {
	if len(messages) > historyLimit {
		messages = messages[len(messages)-historyLimit:]
	}
	turns := make([]agent.HistoryTurn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, agent.HistoryTurn{Sender: msg.Sender, Content: msg.Content})
	}
	return turns
}

package store

import (
	"encoding/json"
	"time"
)

// Status tracks an artifact's generation lifecycle.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Sender identifies which side of a conversation wrote a message.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Session lifecycle states.
const (
	SessionActive   = "active"
	SessionArchived = "archived"
	SessionDeleted  = "deleted"
)

// Lecture is a persisted lecture artifact. Content is the opaque
// structured outline produced by the generation pipeline.
type Lecture struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id,omitempty"`
	Title        string          `json:"title"`
	Subject      string          `json:"subject"`
	Grade        string          `json:"grade,omitempty"` // elementary, middle, high, university
	Description  string          `json:"description,omitempty"`
	Requirements string          `json:"requirements"`
	Content      json.RawMessage `json:"content,omitempty"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SlideContent is a single slide inside a deck.
type SlideContent struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	SlideType string `json:"slide_type"` // title, content, image, conclusion, question
	Notes     string `json:"notes,omitempty"`
}

// SlideDeck is a persisted slide-deck artifact.
type SlideDeck struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id,omitempty"`
	Title            string         `json:"title"`
	Subject          string         `json:"subject"`
	PresentationType string         `json:"presentation_type,omitempty"` // lecture, workshop, seminar, conference
	Duration         int            `json:"duration,omitempty"`          // minutes
	Description      string         `json:"description,omitempty"`
	Requirements     string         `json:"requirements"`
	Slides           []SlideContent `json:"slides,omitempty"`
	SlideCount       int            `json:"slide_count"`
	SourceLectureID  string         `json:"source_lecture_id,omitempty"` // set when derived from a lecture
	Status           Status         `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ChatSession groups the messages of one conversation.
type ChatSession struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	MessageCount int       `json:"message_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChatMessage is one persisted conversational turn half. Messages are
// append-only and never mutated after creation.
type ChatMessage struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Content   string         `json:"content"`
	Sender    string         `json:"sender"`       // user or assistant
	Type      string         `json:"message_type"` // text, lecture, ...
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

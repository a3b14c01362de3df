// Package audit keeps an append-only JSONL trail of conversational turns
// and generation runs.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Event types recorded in the trail.
const (
	EventTurn       = "turn"
	EventGeneration = "generation"
)

// Entry represents a single audited event
type Entry struct {
	Timestamp  time.Time     `json:"timestamp"`
	Event      string        `json:"event"`
	UserID     string        `json:"user_id,omitempty"`
	SessionID  string        `json:"session_id,omitempty"`
	Intent     string        `json:"intent,omitempty"`
	ToolsUsed  []string      `json:"tools_used,omitempty"`
	ArtifactID string        `json:"artifact_id,omitempty"`
	Kind       string        `json:"kind,omitempty"`
	Status     string        `json:"status,omitempty"`
	Tier       string        `json:"tier,omitempty"` // extraction tier that produced the content
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ms"`
}

// Logger appends entries to a JSONL file. A nil Logger discards entries,
// so components can treat auditing as optional.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger creates a logger writing to path
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	return &Logger{path: path}, nil
}

// Log appends one entry to the trail
func (l *Logger) Log(entry Entry) error {
	if l == nil {
		return nil
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// Entries reads the full trail back
func (l *Logger) Entries() ([]Entry, error) {
	if l == nil {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			// Skip malformed lines
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

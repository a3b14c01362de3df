// Package store is the persistence collaborator: SQLite-backed records for
// chat sessions, messages, lectures and slide decks. Single-row reads and
// writes are atomic; nothing here requires cross-row transactions.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound reports that a referenced record does not exist. Callers
// must handle it explicitly; it is never silently defaulted.
var ErrNotFound = errors.New("record not found")

// Store manages the SQLite database
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	-- Conversations
	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		title TEXT NOT NULL DEFAULT 'New Chat',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Append-only conversation turns
	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		content TEXT NOT NULL,
		sender TEXT NOT NULL,
		message_type TEXT NOT NULL DEFAULT 'text',
		metadata TEXT,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (session_id) REFERENCES chat_sessions(id)
	);

	-- Generated lecture outlines
	CREATE TABLE IF NOT EXISTS lectures (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		title TEXT NOT NULL,
		subject TEXT NOT NULL,
		grade TEXT,
		description TEXT,
		requirements TEXT NOT NULL,
		content TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Generated slide decks
	CREATE TABLE IF NOT EXISTS slide_decks (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		title TEXT NOT NULL,
		subject TEXT NOT NULL,
		presentation_type TEXT,
		duration INTEGER,
		description TEXT,
		requirements TEXT NOT NULL,
		slides TEXT,
		slide_count INTEGER NOT NULL DEFAULT 0,
		source_lecture_id TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session ON chat_messages(session_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON chat_sessions(user_id, status);
	CREATE INDEX IF NOT EXISTS idx_lectures_user ON lectures(user_id);
	CREATE INDEX IF NOT EXISTS idx_slide_decks_user ON slide_decks(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Sessions ---

// CreateSession creates a new active chat session and returns its id
func (s *Store) CreateSession(userID string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO chat_sessions (id, user_id, title, status, created_at, updated_at)
		 VALUES (?, ?, 'New Chat', ?, ?, ?)`,
		id, nullable(userID), SessionActive, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// GetSession returns a session by id
func (s *Store) GetSession(sessionID string) (*ChatSession, error) {
	row := s.db.QueryRow(
		`SELECT id, COALESCE(user_id, ''), title, status, created_at, updated_at
		 FROM chat_sessions WHERE id = ?`, sessionID,
	)

	var sess ChatSession
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Title, &sess.Status, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

// SetSessionTitle updates a session's display title
func (s *Store) SetSessionTitle(sessionID, title string) error {
	res, err := s.db.Exec(
		`UPDATE chat_sessions SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to set session title: %w", err)
	}
	return checkAffected(res)
}

// DeleteSession soft-deletes a session. Its messages are kept.
func (s *Store) DeleteSession(sessionID string) error {
	res, err := s.db.Exec(
		`UPDATE chat_sessions SET status = ?, updated_at = ? WHERE id = ?`,
		SessionDeleted, time.Now().UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return checkAffected(res)
}

// ListSessions returns a user's non-deleted sessions, most recent first,
// each with its message count
func (s *Store) ListSessions(userID string, limit int) ([]ChatSession, error) {
	rows, err := s.db.Query(
		`SELECT se.id, COALESCE(se.user_id, ''), se.title, se.status, se.created_at, se.updated_at,
		        (SELECT COUNT(*) FROM chat_messages m WHERE m.session_id = se.id)
		 FROM chat_sessions se
		 WHERE se.user_id = ? AND se.status != ?
		 ORDER BY se.updated_at DESC LIMIT ?`,
		userID, SessionDeleted, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []ChatSession
	for rows.Next() {
		var sess ChatSession
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.Title, &sess.Status,
			&sess.CreatedAt, &sess.UpdatedAt, &sess.MessageCount); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// --- Messages ---

// SaveMessage appends a message to a session and touches the session's
// updated_at. Messages are never updated or removed afterwards.
func (s *Store) SaveMessage(msg ChatMessage) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	metadata := "{}"
	if msg.Metadata != nil {
		b, err := json.Marshal(msg.Metadata)
		if err != nil {
			return "", fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadata = string(b)
	}

	msgType := msg.Type
	if msgType == "" {
		msgType = "text"
	}

	_, err := s.db.Exec(
		`INSERT INTO chat_messages (id, session_id, content, sender, message_type, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, msg.SessionID, msg.Content, msg.Sender, msgType, metadata, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save message: %w", err)
	}

	_, err = s.db.Exec(`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, now, msg.SessionID)
	if err != nil {
		return "", fmt.Errorf("failed to touch session: %w", err)
	}

	return id, nil
}

// History returns a session's messages in chronological order, up to limit
func (s *Store) History(sessionID string, limit int) ([]ChatMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, content, sender, message_type, COALESCE(metadata, '{}'), created_at
		 FROM chat_messages WHERE session_id = ?
		 ORDER BY created_at ASC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		var metadata string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Content, &msg.Sender,
			&msg.Type, &metadata, &msg.CreatedAt); err != nil {
			return nil, err
		}
		// Malformed metadata is skipped, not fatal: history must load.
		_ = json.Unmarshal([]byte(metadata), &msg.Metadata)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// --- Lectures ---

// CreateLecture inserts a lecture record, assigning its id and timestamps
func (s *Store) CreateLecture(lec *Lecture) error {
	lec.ID = uuid.NewString()
	now := time.Now().UTC()
	lec.CreatedAt = now
	lec.UpdatedAt = now
	if lec.Status == "" {
		lec.Status = StatusDraft
	}

	var content any
	if lec.Content != nil {
		content = string(lec.Content)
	}

	_, err := s.db.Exec(
		`INSERT INTO lectures (id, user_id, title, subject, grade, description, requirements, content, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lec.ID, nullable(lec.UserID), lec.Title, lec.Subject, nullable(lec.Grade),
		nullable(lec.Description), lec.Requirements, content, lec.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create lecture: %w", err)
	}
	return nil
}

// GetLecture returns a lecture by id
func (s *Store) GetLecture(id string) (*Lecture, error) {
	row := s.db.QueryRow(
		`SELECT id, COALESCE(user_id, ''), title, subject, COALESCE(grade, ''),
		        COALESCE(description, ''), requirements, COALESCE(content, ''), status, created_at, updated_at
		 FROM lectures WHERE id = ?`, id,
	)

	var lec Lecture
	var content string
	err := row.Scan(&lec.ID, &lec.UserID, &lec.Title, &lec.Subject, &lec.Grade,
		&lec.Description, &lec.Requirements, &content, &lec.Status, &lec.CreatedAt, &lec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lecture: %w", err)
	}
	if content != "" {
		lec.Content = json.RawMessage(content)
	}
	return &lec, nil
}

// SetLectureContent persists generated content and moves the lecture to
// the given status in one write
func (s *Store) SetLectureContent(id string, content json.RawMessage, status Status) error {
	res, err := s.db.Exec(
		`UPDATE lectures SET content = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(content), status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set lecture content: %w", err)
	}
	return checkAffected(res)
}

// SetLectureStatus updates only the status. Existing content is untouched,
// which is what keeps failed generations from clobbering prior content.
func (s *Store) SetLectureStatus(id string, status Status) error {
	res, err := s.db.Exec(
		`UPDATE lectures SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set lecture status: %w", err)
	}
	return checkAffected(res)
}

// SearchLectures finds lectures whose title, subject or description
// contains the query, newest first
func (s *Store) SearchLectures(query, userID string, limit int) ([]Lecture, error) {
	pattern := "%" + query + "%"
	args := []any{pattern, pattern, pattern}

	sqlQuery := `SELECT id, COALESCE(user_id, ''), title, subject, COALESCE(grade, ''),
	        COALESCE(description, ''), requirements, COALESCE(content, ''), status, created_at, updated_at
	 FROM lectures
	 WHERE (title LIKE ? OR subject LIKE ? OR description LIKE ?)`
	if userID != "" {
		sqlQuery += ` AND user_id = ?`
		args = append(args, userID)
	}
	sqlQuery += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search lectures: %w", err)
	}
	defer rows.Close()

	return scanLectures(rows)
}

// ListLectures returns lectures, optionally scoped to a user, paginated
// newest first
func (s *Store) ListLectures(userID string, page, perPage int) ([]Lecture, int, error) {
	if page < 1 {
		page = 1
	}

	countQuery := `SELECT COUNT(*) FROM lectures`
	listQuery := `SELECT id, COALESCE(user_id, ''), title, subject, COALESCE(grade, ''),
	        COALESCE(description, ''), requirements, COALESCE(content, ''), status, created_at, updated_at
	 FROM lectures`
	var countArgs, listArgs []any
	if userID != "" {
		countQuery += ` WHERE user_id = ?`
		listQuery += ` WHERE user_id = ?`
		countArgs = append(countArgs, userID)
		listArgs = append(listArgs, userID)
	}
	listQuery += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	listArgs = append(listArgs, perPage, (page-1)*perPage)

	var total int
	if err := s.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count lectures: %w", err)
	}

	rows, err := s.db.Query(listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list lectures: %w", err)
	}
	defer rows.Close()

	lectures, err := scanLectures(rows)
	return lectures, total, err
}

func scanLectures(rows *sql.Rows) ([]Lecture, error) {
	var lectures []Lecture
	for rows.Next() {
		var lec Lecture
		var content string
		if err := rows.Scan(&lec.ID, &lec.UserID, &lec.Title, &lec.Subject, &lec.Grade,
			&lec.Description, &lec.Requirements, &content, &lec.Status, &lec.CreatedAt, &lec.UpdatedAt); err != nil {
			return nil, err
		}
		if content != "" {
			lec.Content = json.RawMessage(content)
		}
		lectures = append(lectures, lec)
	}
	return lectures, rows.Err()
}

// --- Slide decks ---

// CreateSlideDeck inserts a slide deck record, assigning its id and timestamps
func (s *Store) CreateSlideDeck(deck *SlideDeck) error {
	deck.ID = uuid.NewString()
	now := time.Now().UTC()
	deck.CreatedAt = now
	deck.UpdatedAt = now
	if deck.Status == "" {
		deck.Status = StatusDraft
	}

	slides, err := marshalSlides(deck.Slides)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO slide_decks (id, user_id, title, subject, presentation_type, duration, description,
		                          requirements, slides, slide_count, source_lecture_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		deck.ID, nullable(deck.UserID), deck.Title, deck.Subject, nullable(deck.PresentationType),
		deck.Duration, nullable(deck.Description), deck.Requirements, slides, len(deck.Slides),
		nullable(deck.SourceLectureID), deck.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create slide deck: %w", err)
	}
	deck.SlideCount = len(deck.Slides)
	return nil
}

// GetSlideDeck returns a slide deck by id
func (s *Store) GetSlideDeck(id string) (*SlideDeck, error) {
	row := s.db.QueryRow(
		`SELECT id, COALESCE(user_id, ''), title, subject, COALESCE(presentation_type, ''),
		        COALESCE(duration, 0), COALESCE(description, ''), requirements,
		        COALESCE(slides, ''), slide_count, COALESCE(source_lecture_id, ''), status, created_at, updated_at
		 FROM slide_decks WHERE id = ?`, id,
	)

	deck, err := scanSlideDeck(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slide deck: %w", err)
	}
	return deck, nil
}

// SetSlideDeckSlides persists generated slides, recomputes the slide count
// and moves the deck to the given status in one write
func (s *Store) SetSlideDeckSlides(id string, slides []SlideContent, status Status) error {
	encoded, err := marshalSlides(slides)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(
		`UPDATE slide_decks SET slides = ?, slide_count = ?, status = ?, updated_at = ? WHERE id = ?`,
		encoded, len(slides), status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set slides: %w", err)
	}
	return checkAffected(res)
}

// SetSlideDeckStatus updates only the status, leaving slides untouched
func (s *Store) SetSlideDeckStatus(id string, status Status) error {
	res, err := s.db.Exec(
		`UPDATE slide_decks SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set slide deck status: %w", err)
	}
	return checkAffected(res)
}

// SearchSlideDecks finds decks whose title, subject or description
// contains the query, newest first
func (s *Store) SearchSlideDecks(query, userID string, limit int) ([]SlideDeck, error) {
	pattern := "%" + query + "%"
	args := []any{pattern, pattern, pattern}

	sqlQuery := `SELECT id, COALESCE(user_id, ''), title, subject, COALESCE(presentation_type, ''),
	        COALESCE(duration, 0), COALESCE(description, ''), requirements,
	        COALESCE(slides, ''), slide_count, COALESCE(source_lecture_id, ''), status, created_at, updated_at
	 FROM slide_decks
	 WHERE (title LIKE ? OR subject LIKE ? OR description LIKE ?)`
	if userID != "" {
		sqlQuery += ` AND user_id = ?`
		args = append(args, userID)
	}
	sqlQuery += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search slide decks: %w", err)
	}
	defer rows.Close()

	var decks []SlideDeck
	for rows.Next() {
		deck, err := scanSlideDeck(rows.Scan)
		if err != nil {
			return nil, err
		}
		decks = append(decks, *deck)
	}
	return decks, rows.Err()
}

// ListSlideDecks returns decks, optionally scoped to a user, paginated
// newest first
func (s *Store) ListSlideDecks(userID string, page, perPage int) ([]SlideDeck, int, error) {
	if page < 1 {
		page = 1
	}

	countQuery := `SELECT COUNT(*) FROM slide_decks`
	listQuery := `SELECT id, COALESCE(user_id, ''), title, subject, COALESCE(presentation_type, ''),
	        COALESCE(duration, 0), COALESCE(description, ''), requirements,
	        COALESCE(slides, ''), slide_count, COALESCE(source_lecture_id, ''), status, created_at, updated_at
	 FROM slide_decks`
	var countArgs, listArgs []any
	if userID != "" {
		countQuery += ` WHERE user_id = ?`
		listQuery += ` WHERE user_id = ?`
		countArgs = append(countArgs, userID)
		listArgs = append(listArgs, userID)
	}
	listQuery += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	listArgs = append(listArgs, perPage, (page-1)*perPage)

	var total int
	if err := s.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count slide decks: %w", err)
	}

	rows, err := s.db.Query(listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list slide decks: %w", err)
	}
	defer rows.Close()

	var decks []SlideDeck
	for rows.Next() {
		deck, err := scanSlideDeck(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		decks = append(decks, *deck)
	}
	return decks, total, rows.Err()
}

func scanSlideDeck(scan func(dest ...any) error) (*SlideDeck, error) {
	var deck SlideDeck
	var slides string
	err := scan(&deck.ID, &deck.UserID, &deck.Title, &deck.Subject, &deck.PresentationType,
		&deck.Duration, &deck.Description, &deck.Requirements, &slides, &deck.SlideCount,
		&deck.SourceLectureID, &deck.Status, &deck.CreatedAt, &deck.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if slides != "" {
		if err := json.Unmarshal([]byte(slides), &deck.Slides); err != nil {
			return nil, fmt.Errorf("corrupt slides payload for deck %s: %w", deck.ID, err)
		}
	}
	return &deck, nil
}

func marshalSlides(slides []SlideContent) (string, error) {
	if slides == nil {
		return "", nil
	}
	b, err := json.Marshal(slides)
	if err != nil {
		return "", fmt.Errorf("failed to marshal slides: %w", err)
	}
	return string(b), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

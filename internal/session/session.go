// Package session manages chat sessions and their message history.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koopa0/rca-agent/internal/sqlc"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrNotFound indicates the session does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrEmptyTitle indicates a rename to a blank title.
	ErrEmptyTitle = errors.New("session title cannot be empty")
)

// Querier is the subset of generated queries the store needs.
type Querier interface {
	CreateChatSession(ctx context.Context, arg sqlc.CreateChatSessionParams) (sqlc.ChatSession, error)
	ListChatSessions(ctx context.Context) ([]sqlc.ChatSession, error)
	GetChatSession(ctx context.Context, id pgtype.UUID) (sqlc.ChatSession, error)
	RenameChatSession(ctx context.Context, arg sqlc.RenameChatSessionParams) (int64, error)
	TouchChatSession(ctx context.Context, id pgtype.UUID) error
	DeleteChatSession(ctx context.Context, id pgtype.UUID) error
	InsertChatMessage(ctx context.Context, arg sqlc.InsertChatMessageParams) error
	ListChatMessages(ctx context.Context, sessionID pgtype.UUID) ([]sqlc.ChatMessage, error)
}

// Session is a chat session.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchedRCA is the snapshot of a retrieved document stored alongside an
// assistant message, so history renders the matches as they were at the
// time of the answer.
type MatchedRCA struct {
	RCAID           int64    `json:"rca_id"`
	Filename        string   `json:"filename"`
	ProjectName     string   `json:"project_name"`
	Problems        []string `json:"problems"`
	Solutions       []string `json:"solutions"`
	RootCauses      []string `json:"root_causes"`
	SimilarityScore float64  `json:"similarity_score"`
}

// Message is a single chat message.
type Message struct {
	ID          int64        `json:"id"`
	SessionID   uuid.UUID    `json:"session_id"`
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	MatchedRCAs []MatchedRCA `json:"matched_rcas,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Store reads and writes sessions and messages. The pool is used for the
// append transaction; with a nil pool appends run non-transactionally
// against the querier.
type Store struct {
	querier Querier
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

// NewStore creates a Store. A nil logger falls back to slog.Default().
func NewStore(querier Querier, pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{querier: querier, pool: pool, logger: logger}
}

// Create starts a new session. A blank title gets a timestamped default.
func (s *Store) Create(ctx context.Context, title string) (Session, error) {
	if title == "" {
		title = "Chat Session " + time.Now().Format("2006-01-02 15:04")
	}

	row, err := s.querier.CreateChatSession(ctx, sqlc.CreateChatSessionParams{
		ID:    toPgUUID(uuid.New()),
		Title: &title,
	})
	if err != nil {
		return Session{}, fmt.Errorf("creating session: %w", err)
	}
	return fromSessionRow(row), nil
}

// List returns all sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Session, error) {
	rows, err := s.querier.ListChatSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	sessions := make([]Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, fromSessionRow(row))
	}
	return sessions, nil
}

// Get returns one session or ErrNotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	row, err := s.querier.GetChatSession(ctx, toPgUUID(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("getting session %s: %w", id, err)
	}
	return fromSessionRow(row), nil
}

// Rename sets the session title. Returns ErrEmptyTitle for a blank title
// and ErrNotFound if the session does not exist.
func (s *Store) Rename(ctx context.Context, id uuid.UUID, title string) error {
	if title == "" {
		return ErrEmptyTitle
	}

	affected, err := s.querier.RenameChatSession(ctx, sqlc.RenameChatSessionParams{
		ID:    toPgUUID(id),
		Title: &title,
	})
	if err != nil {
		return fmt.Errorf("renaming session %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session; its messages go with it. Deleting a session
// that does not exist is not an error.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.querier.DeleteChatSession(ctx, toPgUUID(id)); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// AppendMessage stores a message and bumps the session's updated_at in one
// transaction.
func (s *Store) AppendMessage(ctx context.Context, sessionID uuid.UUID, role, content string, matched []MatchedRCA) error {
	params, err := messageParams(sessionID, role, content, matched)
	if err != nil {
		return err
	}

	if s.pool == nil {
		if err := s.querier.InsertChatMessage(ctx, params); err != nil {
			return fmt.Errorf("inserting message: %w", err)
		}
		if err := s.querier.TouchChatSession(ctx, params.SessionID); err != nil {
			return fmt.Errorf("touching session: %w", err)
		}
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := sqlc.New(tx)
	if err := q.InsertChatMessage(ctx, params); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	if err := q.TouchChatSession(ctx, params.SessionID); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing message: %w", err)
	}
	return nil
}

// Messages returns the session history in chronological order. A session
// with no messages, or no session at all, yields an empty slice.
func (s *Store) Messages(ctx context.Context, sessionID uuid.UUID) ([]Message, error) {
	rows, err := s.querier.ListChatMessages(ctx, toPgUUID(sessionID))
	if err != nil {
		return nil, fmt.Errorf("listing messages for %s: %w", sessionID, err)
	}

	messages := make([]Message, 0, len(rows))
	for _, row := range rows {
		msg := Message{
			ID:        row.ID,
			SessionID: uuid.UUID(row.SessionID.Bytes),
			Role:      row.Role,
			Content:   row.Content,
			Timestamp: row.Timestamp.Time,
		}
		if len(row.MatchedRcas) > 0 {
			if err := json.Unmarshal(row.MatchedRcas, &msg.MatchedRCAs); err != nil {
				s.logger.Warn("dropping malformed matched_rcas", "message_id", row.ID, "error", err)
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func messageParams(sessionID uuid.UUID, role, content string, matched []MatchedRCA) (sqlc.InsertChatMessageParams, error) {
	params := sqlc.InsertChatMessageParams{
		SessionID: toPgUUID(sessionID),
		Role:      role,
		Content:   content,
	}
	if len(matched) > 0 {
		encoded, err := json.Marshal(matched)
		if err != nil {
			return params, fmt.Errorf("encoding matched RCAs: %w", err)
		}
		params.MatchedRcas = encoded
	}
	return params, nil
}

func fromSessionRow(row sqlc.ChatSession) Session {
	sess := Session{
		ID:        uuid.UUID(row.ID.Bytes),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	if row.Title != nil {
		sess.Title = *row.Title
	}
	return sess
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

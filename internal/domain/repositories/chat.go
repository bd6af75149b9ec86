package repositories

import (
	"context"

	"minote/internal/domain/models"
)

// ChatRepository is the chat sessions + messages collections of the record
// store. Sessions are always owner-scoped; messages are reached through their
// session.
type ChatRepository interface {
	// CreateSession inserts a session and fills in its generated ID.
	CreateSession(ctx context.Context, session *models.ChatSession) error

	// GetSession retrieves a session scoped to its owner.
	// Returns domain.ErrNotFound if missing or owned by someone else.
	GetSession(ctx context.Context, sessionID, userID string) (*models.ChatSession, error)

	// ListSessions returns the owner's sessions, most recently updated first.
	ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error)

	// UpdateSession persists title/system-prompt/updated-at changes.
	// Returns domain.ErrNotFound if missing.
	UpdateSession(ctx context.Context, session *models.ChatSession) error

	// TouchSession bumps the session's updated_at.
	TouchSession(ctx context.Context, sessionID string) error

	// DeleteSession removes the session row. Messages are deleted separately
	// (cascade is driven by the service, messages first).
	DeleteSession(ctx context.Context, sessionID string) error

	// InsertMessage appends a message and fills in its generated ID and
	// creation timestamp. Messages are never updated afterwards.
	InsertMessage(ctx context.Context, msg *models.ChatMessage) error

	// ListMessages returns a session's messages ordered by creation time.
	ListMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)

	// DeleteMessages removes every message of a session.
	DeleteMessages(ctx context.Context, sessionID string) error
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"minote/internal/domain"
	"minote/internal/domain/models"
	"minote/internal/domain/repositories"
)

// PostgresChatRepository implements the ChatRepository interface using PostgreSQL
type PostgresChatRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewChatRepository creates a new PostgresChatRepository
func NewChatRepository(config *RepositoryConfig) repositories.ChatRepository {
	return &PostgresChatRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateSession creates a new chat session
func (r *PostgresChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, document_id, system_prompt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, r.tables.ChatSessions)

	err := r.pool.QueryRow(ctx, query,
		session.UserID,
		session.Title,
		session.DocumentID,
		session.SystemPrompt,
		session.CreatedAt,
		session.UpdatedAt,
	).Scan(&session.ID)

	if err != nil {
		return fmt.Errorf("create chat session: %w", err)
	}

	return nil
}

// GetSession retrieves a session scoped to its owner
func (r *PostgresChatRepository) GetSession(ctx context.Context, sessionID, userID string) (*models.ChatSession, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, document_id, system_prompt, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.ChatSessions)

	var session models.ChatSession
	err := r.pool.QueryRow(ctx, query, sessionID, userID).Scan(
		&session.ID,
		&session.UserID,
		&session.Title,
		&session.DocumentID,
		&session.SystemPrompt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("chat session %s: %w", sessionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chat session: %w", err)
	}

	return &session, nil
}

// ListSessions returns the owner's sessions, most recently updated first
func (r *PostgresChatRepository) ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, document_id, system_prompt, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, r.tables.ChatSessions)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.ChatSession, 0)
	for rows.Next() {
		var session models.ChatSession
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Title,
			&session.DocumentID,
			&session.SystemPrompt,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat sessions: %w", err)
	}

	return sessions, nil
}

// UpdateSession persists title/system-prompt/updated-at changes
func (r *PostgresChatRepository) UpdateSession(ctx context.Context, session *models.ChatSession) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, system_prompt = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.ChatSessions)

	tag, err := r.pool.Exec(ctx, query,
		session.Title,
		session.SystemPrompt,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update chat session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chat session %s: %w", session.ID, domain.ErrNotFound)
	}

	return nil
}

// TouchSession bumps the session's updated_at
func (r *PostgresChatRepository) TouchSession(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf(`UPDATE %s SET updated_at = $1 WHERE id = $2`, r.tables.ChatSessions)

	if _, err := r.pool.Exec(ctx, query, time.Now(), sessionID); err != nil {
		return fmt.Errorf("touch chat session: %w", err)
	}

	return nil
}

// DeleteSession removes the session row
func (r *PostgresChatRepository) DeleteSession(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.ChatSessions)

	tag, err := r.pool.Exec(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chat session %s: %w", sessionID, domain.ErrNotFound)
	}

	return nil
}

// InsertMessage appends a message to a session
func (r *PostgresChatRepository) InsertMessage(ctx context.Context, msg *models.ChatMessage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (session_id, role, content, document_ids)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.ChatMessages)

	err := r.pool.QueryRow(ctx, query,
		msg.SessionID,
		string(msg.Role),
		msg.Content,
		msg.DocumentIDs,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	return nil
}

// ListMessages returns a session's messages ordered by creation time
func (r *PostgresChatRepository) ListMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, role, content, COALESCE(document_ids, '{}'), created_at
		FROM %s
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, r.tables.ChatMessages)

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var msg models.ChatMessage
		var role string
		if err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&role,
			&msg.Content,
			&msg.DocumentIDs,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msg.Role = models.Role(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}

	return messages, nil
}

// DeleteMessages removes every message of a session
func (r *PostgresChatRepository) DeleteMessages(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE session_id = $1`, r.tables.ChatMessages)

	if _, err := r.pool.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("delete chat messages: %w", err)
	}

	return nil
}

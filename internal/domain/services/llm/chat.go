package llm

import (
	"context"

	"minote/internal/domain/models"
)

// CreateSessionRequest carries the fields a caller may set on a new session.
type CreateSessionRequest struct {
	UserID       string  `json:"-"`
	Title        *string `json:"title,omitempty"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
	DocumentID   *string `json:"document_id,omitempty"`
}

// UpdateSessionRequest edits a session's title and/or custom system prompt.
// Nil fields keep their current value.
type UpdateSessionRequest struct {
	Title        *string `json:"title,omitempty"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
}

// AppendMessageRequest appends one turn to a session.
type AppendMessageRequest struct {
	UserID      string      `json:"-"`
	SessionID   string      `json:"-"`
	Role        models.Role `json:"role"`
	Content     string      `json:"content"`
	DocumentIDs []string    `json:"document_ids,omitempty"`
}

// ChatService manages chat sessions and their message log.
type ChatService interface {
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*models.ChatSession, error)
	GetSession(ctx context.Context, sessionID, userID string) (*models.ChatSession, error)
	ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error)
	UpdateSession(ctx context.Context, sessionID, userID string, req *UpdateSessionRequest) (*models.ChatSession, error)

	// DeleteSession removes the session and all of its messages.
	DeleteSession(ctx context.Context, sessionID, userID string) error

	// AppendMessage validates ownership, inserts the message and bumps the
	// session's updated_at. Pure append; no edit or retraction exists.
	AppendMessage(ctx context.Context, req *AppendMessageRequest) (*models.ChatMessage, error)

	// ListMessages returns the session's full history in creation order.
	ListMessages(ctx context.Context, sessionID, userID string) ([]models.ChatMessage, error)
}

// ConverseResult is what a completed conversational turn reports back.
// Success is false when the provider call failed and the stored reply is the
// fixed apology text; the turn itself still completed.
type ConverseResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ConversationService runs the grounded conversational pipeline.
type ConversationService interface {
	// Converse appends the user's turn, assembles the grounded prompt
	// (history window, tagged documents, sheet snapshot, encyclopedia
	// summaries), calls the provider and stores the reply. Exactly one
	// assistant message is appended whether or not generation succeeds.
	Converse(ctx context.Context, sessionID, userID, text string, documentIDs []string) (*ConverseResult, error)
}

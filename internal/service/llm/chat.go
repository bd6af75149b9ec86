package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"minote/internal/config"
	"minote/internal/domain"
	"minote/internal/domain/models"
	"minote/internal/domain/repositories"
	llmsvc "minote/internal/domain/services/llm"
)

// chatService implements the ChatService interface
type chatService struct {
	chatRepo repositories.ChatRepository
	logger   *slog.Logger
}

// NewChatService creates a new chat session service
func NewChatService(chatRepo repositories.ChatRepository, logger *slog.Logger) llmsvc.ChatService {
	return &chatService{
		chatRepo: chatRepo,
		logger:   logger,
	}
}

// CreateSession creates a new chat session for the caller.
func (s *chatService) CreateSession(ctx context.Context, req *llmsvc.CreateSessionRequest) (*models.ChatSession, error) {
	if req.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Length(0, config.MaxSessionTitleLength),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	session := &models.ChatSession{
		UserID:       req.UserID,
		Title:        req.Title,
		DocumentID:   req.DocumentID,
		SystemPrompt: req.SystemPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.chatRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("chat session created", "id", session.ID, "user_id", req.UserID)

	return session, nil
}

// GetSession retrieves one of the caller's sessions.
func (s *chatService) GetSession(ctx context.Context, sessionID, userID string) (*models.ChatSession, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.chatRepo.GetSession(ctx, sessionID, userID)
}

// ListSessions returns the caller's sessions, most recently active first.
func (s *chatService) ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.chatRepo.ListSessions(ctx, userID)
}

// UpdateSession edits a session's title and/or custom system prompt.
func (s *chatService) UpdateSession(ctx context.Context, sessionID, userID string, req *llmsvc.UpdateSessionRequest) (*models.ChatSession, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Length(0, config.MaxSessionTitleLength),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	session, err := s.chatRepo.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		session.Title = req.Title
	}
	if req.SystemPrompt != nil {
		session.SystemPrompt = req.SystemPrompt
	}
	session.UpdatedAt = time.Now()

	if err := s.chatRepo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// DeleteSession removes a session and its full message log. Messages go
// first; the cascade is sequential, not transactional.
func (s *chatService) DeleteSession(ctx context.Context, sessionID, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	if _, err := s.chatRepo.GetSession(ctx, sessionID, userID); err != nil {
		return err
	}

	if err := s.chatRepo.DeleteMessages(ctx, sessionID); err != nil {
		return err
	}
	if err := s.chatRepo.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	s.logger.Info("chat session deleted", "id", sessionID, "user_id", userID)

	return nil
}

// AppendMessage appends one turn and bumps the session's updated_at.
// Pure append; no edit or retraction exists.
func (s *chatService) AppendMessage(ctx context.Context, req *llmsvc.AppendMessageRequest) (*models.ChatMessage, error) {
	if req.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, req.Role)
	}
	if req.Content == "" {
		return nil, fmt.Errorf("%w: content must not be empty", domain.ErrValidation)
	}

	if _, err := s.chatRepo.GetSession(ctx, req.SessionID, req.UserID); err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		SessionID:   req.SessionID,
		Role:        req.Role,
		Content:     req.Content,
		DocumentIDs: req.DocumentIDs,
	}
	if err := s.chatRepo.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.chatRepo.TouchSession(ctx, req.SessionID); err != nil {
		s.logger.Warn("failed to touch session", "session_id", req.SessionID, "error", err)
	}

	return msg, nil
}

// ListMessages returns the session's history in creation order.
func (s *chatService) ListMessages(ctx context.Context, sessionID, userID string) ([]models.ChatMessage, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	if _, err := s.chatRepo.GetSession(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	return s.chatRepo.ListMessages(ctx, sessionID)
}

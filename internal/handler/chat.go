package handler

import (
	"log/slog"
	"net/http"

	llmsvc "minote/internal/domain/services/llm"
	"minote/internal/httputil"
)

// ChatHandler handles chat session and conversation HTTP requests
type ChatHandler struct {
	chatService         llmsvc.ChatService
	conversationService llmsvc.ConversationService
	logger              *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService llmsvc.ChatService, conversationService llmsvc.ConversationService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService:         chatService,
		conversationService: conversationService,
		logger:              logger,
	}
}

// CreateSession creates a new chat session
// POST /api/chat/sessions
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req llmsvc.CreateSessionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.CallerID(r)

	session, err := h.chatService.CreateSession(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, session)
}

// ListSessions lists the caller's sessions, most recently active first
// GET /api/chat/sessions
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatService.ListSessions(r.Context(), httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sessions)
}

// GetSession retrieves a single session
// GET /api/chat/sessions/{id}
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	session, err := h.chatService.GetSession(r.Context(), id, httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, session)
}

// UpdateSession edits a session's title and/or system prompt
// PATCH /api/chat/sessions/{id}
func (h *ChatHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	var req llmsvc.UpdateSessionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.chatService.UpdateSession(r.Context(), id, httputil.CallerID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, session)
}

// DeleteSession removes a session and its message log
// DELETE /api/chat/sessions/{id}
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	if err := h.chatService.DeleteSession(r.Context(), id, httputil.CallerID(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMessages returns a session's history in creation order
// GET /api/chat/sessions/{id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), id, httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messages)
}

// SendMessage runs one grounded conversational turn
// POST /api/chat/sessions/{id}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	var req struct {
		Message     string   `json:"message"`
		DocumentIDs []string `json:"document_ids,omitempty"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.conversationService.Converse(r.Context(), id, httputil.CallerID(r), req.Message, req.DocumentIDs)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

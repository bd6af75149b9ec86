package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"minote/internal/config"
	"minote/internal/domain/models"
	docsvc "minote/internal/domain/services/document"
	extsvc "minote/internal/domain/services/external"
	llmsvc "minote/internal/domain/services/llm"
)

// conversationService runs the grounded conversational pipeline.
type conversationService struct {
	chatSvc   llmsvc.ChatService
	docSvc    docsvc.Service
	provider  llmsvc.Provider
	sheets    extsvc.SheetCache
	summaries extsvc.SummaryClient
	extractor extsvc.CandidateExtractor
	lang      string
	logger    *slog.Logger
}

// NewService wires the conversation pipeline. lang is the encyclopedia
// lookup language.
func NewService(
	chatSvc llmsvc.ChatService,
	docSvc docsvc.Service,
	provider llmsvc.Provider,
	sheets extsvc.SheetCache,
	summaries extsvc.SummaryClient,
	extractor extsvc.CandidateExtractor,
	lang string,
	logger *slog.Logger,
) llmsvc.ConversationService {
	return &conversationService{
		chatSvc:   chatSvc,
		docSvc:    docSvc,
		provider:  provider,
		sheets:    sheets,
		summaries: summaries,
		extractor: extractor,
		lang:      lang,
		logger:    logger,
	}
}

// Converse appends the user's turn, assembles the grounded prompt, calls the
// provider and stores exactly one assistant reply. Provider failures degrade
// to a stored apology and a soft-failure result; they never abort the turn.
func (s *conversationService) Converse(ctx context.Context, sessionID, userID, text string, documentIDs []string) (*llmsvc.ConverseResult, error) {
	if _, err := s.chatSvc.AppendMessage(ctx, &llmsvc.AppendMessageRequest{
		UserID:      userID,
		SessionID:   sessionID,
		Role:        models.RoleUser,
		Content:     text,
		DocumentIDs: documentIDs,
	}); err != nil {
		return nil, err
	}

	session, err := s.chatSvc.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.chatSvc.ListMessages(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	history := buildHistory(messages, config.HistoryWindow)

	contextPrompt := s.documentContext(ctx, userID, documentIDs)

	if sheetData := s.sheetContext(ctx, userID); sheetData != "" {
		if contextPrompt != "" {
			contextPrompt += "\n\n"
		}
		contextPrompt += sheetInstruction(sheetData)
	}

	if wikiBlock := s.encyclopediaContext(ctx, text); wikiBlock != "" {
		if contextPrompt != "" {
			contextPrompt += "\n\n"
		}
		contextPrompt += wikiBlock
	}

	finalPrompt := text
	if contextPrompt != "" {
		finalPrompt = contextPrompt + "\n\n" + text
	}

	// The newest turn goes as the prompt, not as history.
	reply, genErr := s.provider.Generate(ctx, &llmsvc.GenerateRequest{
		System:      systemInstruction(session.SystemPrompt),
		History:     history[:len(history)-1],
		Prompt:      finalPrompt,
		MaxTokens:   config.GenerateMaxTokens,
		Temperature: config.GenerateTemperature,
	})
	if genErr != nil {
		s.logger.Error("generation failed", "session_id", sessionID, "provider", s.provider.Name(), "error", genErr)

		if _, err := s.chatSvc.AppendMessage(ctx, &llmsvc.AppendMessageRequest{
			UserID:    userID,
			SessionID: sessionID,
			Role:      models.RoleAssistant,
			Content:   ApologyMessage,
		}); err != nil {
			return nil, err
		}

		return &llmsvc.ConverseResult{Success: false, Message: ApologyMessage}, nil
	}

	if _, err := s.chatSvc.AppendMessage(ctx, &llmsvc.AppendMessageRequest{
		UserID:    userID,
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   reply,
	}); err != nil {
		return nil, err
	}

	s.autoTitle(ctx, session, userID, text)

	return &llmsvc.ConverseResult{Success: true, Message: reply}, nil
}

// buildHistory windows the log to the most recent limit messages and maps
// internal roles onto the provider's two-speaker transcript. System turns
// replay as the user; only the assistant becomes the model.
func buildHistory(messages []models.ChatMessage, limit int) []llmsvc.HistoryMessage {
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	history := make([]llmsvc.HistoryMessage, 0, len(messages))
	for _, msg := range messages {
		role := llmsvc.HistoryRoleUser
		if msg.Role == models.RoleAssistant {
			role = llmsvc.HistoryRoleModel
		}
		history = append(history, llmsvc.HistoryMessage{Role: role, Text: msg.Content})
	}

	return history
}

// documentContext fetches the tagged documents and assembles the excerpt
// blocks. Documents that fail to load or have no content are skipped.
func (s *conversationService) documentContext(ctx context.Context, userID string, documentIDs []string) string {
	if len(documentIDs) == 0 {
		return ""
	}

	var blocks strings.Builder
	for _, docID := range documentIDs {
		doc, err := s.docSvc.GetByID(ctx, docID, userID)
		if err != nil {
			s.logger.Warn("skipping tagged document", "document_id", docID, "error", err)
			continue
		}
		if doc.Content == nil || *doc.Content == "" {
			continue
		}

		excerpt := *doc.Content
		if runes := []rune(excerpt); len(runes) > config.MaxDocumentExcerptChars {
			excerpt = string(runes[:config.MaxDocumentExcerptChars]) + "..."
		}
		blocks.WriteString(documentBlock(doc.Title, excerpt))
	}

	if blocks.Len() == 0 {
		return ""
	}

	return documentInstruction(blocks.String())
}

// sheetContext fetches the cached spreadsheet snapshot; failures degrade to
// no supplementary data.
func (s *conversationService) sheetContext(ctx context.Context, userID string) string {
	data, err := s.sheets.GetOrFetch(ctx, userID)
	if err != nil {
		s.logger.Warn("sheet data unavailable", "error", err)
		return ""
	}
	return data
}

// encyclopediaContext extracts proper-name candidates from the user's raw
// text and looks each one up, at most config.MaxEncyclopediaLookups in total.
func (s *conversationService) encyclopediaContext(ctx context.Context, text string) string {
	candidates := s.extractor.Candidates(text, config.MaxEncyclopediaLookups)
	if len(candidates) == 0 {
		return ""
	}

	var entries strings.Builder
	for _, candidate := range candidates {
		summary, err := s.summaries.Summary(ctx, candidate, s.lang)
		if err != nil {
			s.logger.Warn("encyclopedia lookup failed", "query", candidate, "error", err)
			continue
		}
		if summary == nil {
			continue
		}

		entries.WriteString(fmt.Sprintf("\n--- %s ---\n%s\n", summary.Title, summary.Extract))
		if summary.URL != "" {
			entries.WriteString(fmt.Sprintf("Nguồn: %s\n", summary.URL))
		}
	}

	if entries.Len() == 0 {
		return ""
	}

	return strings.TrimSpace(fmt.Sprintf(`=== THÔNG TIN THAM KHẢO TỪ WIKIPEDIA ===
%s
=== KẾT THÚC THÔNG TIN THAM KHẢO ===`, entries.String()))
}

// autoTitle names the session after its first exchange. Runs once: only when
// the title is empty or still the UI placeholder. Never fails the turn.
func (s *conversationService) autoTitle(ctx context.Context, session *models.ChatSession, userID, userMessage string) {
	if session.Title != nil && *session.Title != "" && *session.Title != PlaceholderTitle {
		return
	}

	title, err := s.provider.Generate(ctx, &llmsvc.GenerateRequest{
		Prompt: titlePrompt(userMessage),
	})
	if err != nil {
		s.logger.Warn("title generation failed", "session_id", session.ID, "error", err)
		title = truncateRunes(userMessage, config.TitleTruncateRunes) + "..."
	} else {
		title = stripQuotes(strings.TrimSpace(title))
		if len([]rune(title)) > config.TitleMaxRunes {
			title = truncateRunes(title, config.TitleTruncateRunes) + "..."
		}
	}

	if _, err := s.chatSvc.UpdateSession(ctx, session.ID, userID, &llmsvc.UpdateSessionRequest{Title: &title}); err != nil {
		s.logger.Warn("failed to store generated title", "session_id", session.ID, "error", err)
	}
}

// stripQuotes removes one leading and one trailing quote character.
func stripQuotes(s string) string {
	if len(s) > 0 && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if len(s) > 0 && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"minote/internal/config"
	"minote/internal/repository/postgres"
	"minote/internal/service/document"
	"minote/internal/service/external"
	"minote/internal/service/llm"
	"minote/internal/service/llm/conversation"
	"minote/internal/service/llm/provider"

	llmsvc "minote/internal/domain/services/llm"

	"github.com/joho/godotenv"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type cli struct {
	ctx          context.Context
	chatSvc      llmsvc.ChatService
	conversation llmsvc.ConversationService
	scanner      *bufio.Scanner
	userID       string
	sessionID    string
}

// setupLogger writes structured logs to a timestamped file so provider
// traffic does not interleave with the interactive prompt.
func setupLogger() (*slog.Logger, string, error) {
	logsDir := "logs"
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFilename := filepath.Join(logsDir, fmt.Sprintf("chat_cli_%s.log", timestamp))

	logFile, err := os.Create(logFilename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create log file: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return logger, logFilename, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, logFilename, err := setupLogger()
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	fmt.Printf("%sLogging to %s%s\n", colorCyan, logFilename, colorReset)

	userID := os.Getenv("CHAT_CLI_USER")
	if userID == "" {
		userID = "00000000-0000-0000-0000-000000000001"
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	var llmProvider llmsvc.Provider
	switch cfg.LLMProvider {
	case "openai":
		llmProvider, err = provider.NewOpenAICompatProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		llmProvider, err = provider.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if err != nil {
		log.Fatalf("Failed to setup LLM provider: %v", err)
	}

	docService := document.NewService(postgres.NewDocumentRepository(repoConfig), logger)
	chatService := llm.NewChatService(postgres.NewChatRepository(repoConfig), logger)
	conversationService := conversation.NewService(
		chatService,
		docService,
		llmProvider,
		external.NewSheetCache(cfg.SheetCSVURL, postgres.NewExternalDataRepository(repoConfig), logger),
		external.NewWikipediaClient(logger),
		external.NewLiteratureExtractor(),
		cfg.WikipediaLang,
		logger,
	)

	c := &cli{
		ctx:          ctx,
		chatSvc:      chatService,
		conversation: conversationService,
		scanner:      bufio.NewScanner(os.Stdin),
		userID:       userID,
	}

	fmt.Printf("%sMiNote chat CLI%s (provider: %s, user: %s)\n", colorGreen, colorReset, llmProvider.Name(), userID)
	fmt.Println("Commands: /new, /list, /switch N, /history, /quit. Anything else is sent as a message.")
	c.repl()
}

func (c *cli) repl() {
	for {
		fmt.Printf("%s> %s", colorBlue, colorReset)
		if !c.scanner.Scan() {
			return
		}
		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			return
		case line == "/new":
			c.newSession()
		case line == "/list":
			c.listSessions()
		case strings.HasPrefix(line, "/switch "):
			c.switchSession(strings.TrimPrefix(line, "/switch "))
		case line == "/history":
			c.history()
		default:
			c.send(line)
		}
	}
}

func (c *cli) newSession() {
	session, err := c.chatSvc.CreateSession(c.ctx, &llmsvc.CreateSessionRequest{UserID: c.userID})
	if err != nil {
		fmt.Printf("%serror: %v%s\n", colorRed, err, colorReset)
		return
	}
	c.sessionID = session.ID
	fmt.Printf("%snew session %s%s\n", colorYellow, session.ID, colorReset)
}

func (c *cli) listSessions() {
	sessions, err := c.chatSvc.ListSessions(c.ctx, c.userID)
	if err != nil {
		fmt.Printf("%serror: %v%s\n", colorRed, err, colorReset)
		return
	}
	for i, session := range sessions {
		title := "(untitled)"
		if session.Title != nil && *session.Title != "" {
			title = *session.Title
		}
		marker := " "
		if session.ID == c.sessionID {
			marker = "*"
		}
		fmt.Printf("%s%d%s %s %s\n", colorCyan, i+1, colorReset, marker, title)
	}
}

func (c *cli) switchSession(arg string) {
	index, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		fmt.Printf("%susage: /switch N%s\n", colorRed, colorReset)
		return
	}
	sessions, err := c.chatSvc.ListSessions(c.ctx, c.userID)
	if err != nil {
		fmt.Printf("%serror: %v%s\n", colorRed, err, colorReset)
		return
	}
	if index < 1 || index > len(sessions) {
		fmt.Printf("%sno such session%s\n", colorRed, colorReset)
		return
	}
	c.sessionID = sessions[index-1].ID
	fmt.Printf("%sswitched to %s%s\n", colorYellow, c.sessionID, colorReset)
}

func (c *cli) history() {
	if c.sessionID == "" {
		fmt.Printf("%sno active session, use /new%s\n", colorRed, colorReset)
		return
	}
	messages, err := c.chatSvc.ListMessages(c.ctx, c.sessionID, c.userID)
	if err != nil {
		fmt.Printf("%serror: %v%s\n", colorRed, err, colorReset)
		return
	}
	for _, message := range messages {
		color := colorBlue
		if message.Role == "assistant" {
			color = colorGreen
		}
		fmt.Printf("%s[%s]%s %s\n", color, message.Role, colorReset, message.Content)
	}
}

func (c *cli) send(text string) {
	if c.sessionID == "" {
		c.newSession()
		if c.sessionID == "" {
			return
		}
	}

	result, err := c.conversation.Converse(c.ctx, c.sessionID, c.userID, text, nil)
	if err != nil {
		fmt.Printf("%serror: %v%s\n", colorRed, err, colorReset)
		return
	}
	color := colorGreen
	if !result.Success {
		color = colorYellow
	}
	fmt.Printf("%s%s%s\n", color, result.Message, colorReset)
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"minote/internal/auth"
	"minote/internal/config"
	"minote/internal/handler"
	"minote/internal/middleware"
	"minote/internal/repository/postgres"
	"minote/internal/service/document"
	"minote/internal/service/external"
	"minote/internal/service/file"
	"minote/internal/service/llm"
	"minote/internal/service/llm/conversation"
	"minote/internal/service/llm/provider"
	"minote/internal/storage"

	llmsvc "minote/internal/domain/services/llm"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verifier for the hosted auth provider
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	chatRepo := postgres.NewChatRepository(repoConfig)
	externalRepo := postgres.NewExternalDataRepository(repoConfig)
	fileRepo := postgres.NewFileRepository(repoConfig)

	// Object storage for uploaded files
	objectStore, err := storage.NewMinioStore(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}

	// LLM provider
	llmProvider, err := setupProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to setup LLM provider: %v", err)
	}
	logger.Info("llm provider initialized", "provider", llmProvider.Name())

	// Create services
	docService := document.NewService(docRepo, logger)
	chatService := llm.NewChatService(chatRepo, logger)
	sheetCache := external.NewSheetCache(cfg.SheetCSVURL, externalRepo, logger)
	wikiClient := external.NewWikipediaClient(logger)
	extractor := external.NewLiteratureExtractor()
	conversationService := conversation.NewService(
		chatService,
		docService,
		llmProvider,
		sheetCache,
		wikiClient,
		extractor,
		cfg.WikipediaLang,
		logger,
	)
	fileService := file.NewService(fileRepo, objectStore, logger)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, logger)
	chatHandler := handler.NewChatHandler(chatService, conversationService, logger)
	fileHandler := handler.NewFileHandler(fileService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Document routes. GetDocument and UpdateDocument stay open so published
	// documents can be read and collaboratively edited without a token; the
	// service decides per caller what is allowed.
	mux.HandleFunc("POST /api/documents", middleware.RequireAuth(docHandler.CreateDocument))
	mux.HandleFunc("GET /api/documents", middleware.RequireAuth(docHandler.Search))
	mux.HandleFunc("GET /api/documents/sidebar", middleware.RequireAuth(docHandler.Sidebar))
	mux.HandleFunc("GET /api/documents/pinned", middleware.RequireAuth(docHandler.Pinned))
	mux.HandleFunc("GET /api/documents/trash", middleware.RequireAuth(docHandler.Trash))
	mux.HandleFunc("DELETE /api/documents/trash", middleware.RequireAuth(docHandler.EmptyTrash))
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", middleware.RequireAuth(docHandler.DeleteDocument))
	mux.HandleFunc("POST /api/documents/{id}/archive", middleware.RequireAuth(docHandler.Archive))
	mux.HandleFunc("POST /api/documents/{id}/restore", middleware.RequireAuth(docHandler.Restore))
	mux.HandleFunc("POST /api/documents/{id}/pin", middleware.RequireAuth(docHandler.Pin))
	mux.HandleFunc("POST /api/documents/{id}/unpin", middleware.RequireAuth(docHandler.Unpin))
	mux.HandleFunc("POST /api/documents/{id}/reorder", middleware.RequireAuth(docHandler.Reorder))
	mux.HandleFunc("DELETE /api/documents/{id}/icon", middleware.RequireAuth(docHandler.RemoveIcon))
	mux.HandleFunc("DELETE /api/documents/{id}/cover", middleware.RequireAuth(docHandler.RemoveCoverImage))

	// Chat routes
	mux.HandleFunc("POST /api/chat/sessions", middleware.RequireAuth(chatHandler.CreateSession))
	mux.HandleFunc("GET /api/chat/sessions", middleware.RequireAuth(chatHandler.ListSessions))
	mux.HandleFunc("GET /api/chat/sessions/{id}", middleware.RequireAuth(chatHandler.GetSession))
	mux.HandleFunc("PATCH /api/chat/sessions/{id}", middleware.RequireAuth(chatHandler.UpdateSession))
	mux.HandleFunc("DELETE /api/chat/sessions/{id}", middleware.RequireAuth(chatHandler.DeleteSession))
	mux.HandleFunc("GET /api/chat/sessions/{id}/messages", middleware.RequireAuth(chatHandler.ListMessages))
	mux.HandleFunc("POST /api/chat/sessions/{id}/messages", middleware.RequireAuth(chatHandler.SendMessage))

	// File routes. ResolveURL is the public serving path.
	mux.HandleFunc("POST /api/files/upload-url", middleware.RequireAuth(fileHandler.IssueUploadURL))
	mux.HandleFunc("POST /api/files", middleware.RequireAuth(fileHandler.SaveFile))
	mux.HandleFunc("GET /api/files", middleware.RequireAuth(fileHandler.ListFiles))
	mux.HandleFunc("GET /api/files/{id}/url", fileHandler.ResolveURL)
	mux.HandleFunc("DELETE /api/files/{id}", middleware.RequireAuth(fileHandler.DeleteFile))

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS -> Recovery -> Auth -> Routes
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupProvider selects the completion backend from configuration.
func setupProvider(cfg *config.Config) (llmsvc.Provider, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return provider.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openai":
		return provider.NewOpenAICompatProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

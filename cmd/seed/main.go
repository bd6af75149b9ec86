package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"minote/internal/config"
	"minote/internal/repository/postgres"
	"minote/internal/seed"
	"minote/internal/service/document"

	docsvc "minote/internal/domain/services/document"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed sample data")
	clearData := flag.Bool("clear-data", false, "Clear the seed user's data (keep schema)")
	seedUser := flag.String("user", "00000000-0000-0000-0000-000000000001", "User ID to own the seeded data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		log.Println("🧹 Clearing existing data...")
		if err := clearUserData(ctx, pool, tables, *seedUser); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	// Clear existing data before re-seeding
	log.Println("⚠️  Clearing existing data...")
	if err := clearUserData(ctx, pool, tables, *seedUser); err != nil {
		log.Printf("Warning: Could not clear data: %v", err)
	}

	// Create repositories and services
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	docService := document.NewService(docRepo, logger)

	log.Println("📝 Seeding documents...")
	if err := seedDocuments(ctx, docService, *seedUser); err != nil {
		log.Fatalf("Failed to seed documents: %v", err)
	}

	log.Println("💬 Seeding sample chat...")
	chatSeeder := seed.NewChatSeeder(pool, tables, logger)
	if err := chatSeeder.SeedChatData(ctx, *seedUser); err != nil {
		log.Fatalf("Failed to seed chat data: %v", err)
	}

	log.Println("🎉 Seeding complete!")
}

// seedDocuments creates a small note tree through the service layer so the
// seeded rows carry real sibling-order keys.
func seedDocuments(ctx context.Context, docService docsvc.Service, userID string) error {
	roots := []struct {
		title    string
		children []string
	}{
		{"Văn học Việt Nam", []string{"Truyện Kiều", "Chí Phèo", "Số Đỏ"}},
		{"Ghi chú học tập", []string{"Ôn thi học kỳ"}},
		{"Việc cần làm", nil},
	}

	for i, root := range roots {
		parent, err := docService.Create(ctx, &docsvc.CreateRequest{
			UserID: userID,
			Title:  root.title,
		})
		if err != nil {
			return err
		}
		log.Printf("✅ Created document %d/%d: %s (ID: %s)", i+1, len(roots), root.title, parent.ID)

		for _, child := range root.children {
			doc, err := docService.Create(ctx, &docsvc.CreateRequest{
				UserID:   userID,
				Title:    child,
				ParentID: &parent.ID,
			})
			if err != nil {
				return err
			}
			log.Printf("   └─ %s (ID: %s)", child, doc.ID)
		}
	}
	return nil
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	// Documents. parent_id carries no foreign key on purpose: subtree deletes
	// are shallow, so a child may outlive its parent as a dangling reference.
	createDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			title TEXT NOT NULL,
			parent_id UUID,
			is_archived BOOLEAN NOT NULL DEFAULT FALSE,
			is_published BOOLEAN NOT NULL DEFAULT FALSE,
			allow_editing BOOLEAN,
			is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
			content TEXT,
			cover_image TEXT,
			icon TEXT,
			sort_order INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createDocuments); err != nil {
		return err
	}

	createSessions := `
		CREATE TABLE IF NOT EXISTS ` + tables.ChatSessions + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			title TEXT,
			document_id UUID,
			system_prompt TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createSessions); err != nil {
		return err
	}

	createMessages := `
		CREATE TABLE IF NOT EXISTS ` + tables.ChatMessages + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			session_id UUID NOT NULL REFERENCES ` + tables.ChatSessions + `(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			document_ids TEXT[],
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createMessages); err != nil {
		return err
	}

	createExternalData := `
		CREATE TABLE IF NOT EXISTS ` + tables.ExternalData + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			source TEXT NOT NULL,
			source_id TEXT NOT NULL,
			name TEXT NOT NULL,
			content TEXT NOT NULL,
			last_synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(source, source_id)
		)
	`
	if _, err := pool.Exec(ctx, createExternalData); err != nil {
		return err
	}

	createUploadedFiles := `
		CREATE TABLE IF NOT EXISTS ` + tables.UploadedFiles + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			file_name TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			file_type TEXT NOT NULL,
			file_size BIGINT NOT NULL DEFAULT 0,
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUploadedFiles); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Documents + `_user ON ` + tables.Documents + ` (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Documents + `_parent ON ` + tables.Documents + ` (user_id, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.ChatSessions + `_user ON ` + tables.ChatSessions + ` (user_id, updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.ChatMessages + `_session ON ` + tables.ChatMessages + ` (session_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.UploadedFiles + `_user ON ` + tables.UploadedFiles + ` (user_id, uploaded_at DESC)`,
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops every prefixed table (message log first, FK order)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range []string{
		tables.ChatMessages,
		tables.ChatSessions,
		tables.ExternalData,
		tables.UploadedFiles,
		tables.Documents,
	} {
		if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS `+table+` CASCADE`); err != nil {
			return err
		}
	}
	return nil
}

// clearUserData deletes the seed user's rows, keeping the schema
func clearUserData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, userID string) error {
	// Messages go via the session cascade
	statements := []string{
		`DELETE FROM ` + tables.ChatSessions + ` WHERE user_id = $1`,
		`DELETE FROM ` + tables.ExternalData + ` WHERE user_id = $1`,
		`DELETE FROM ` + tables.UploadedFiles + ` WHERE user_id = $1`,
		`DELETE FROM ` + tables.Documents + ` WHERE user_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt, userID); err != nil {
			return err
		}
	}
	return nil
}

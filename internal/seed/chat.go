package seed

import (
	"context"
	"log/slog"
	"time"

	"minote/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatSeeder handles seeding of sample chat sessions and messages
type ChatSeeder struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewChatSeeder creates a new chat seeder
func NewChatSeeder(pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) *ChatSeeder {
	return &ChatSeeder{
		pool:   pool,
		tables: tables,
		logger: logger,
	}
}

// SeedChatData creates one sample session with a short conversation so the
// frontend has something to render on a fresh database.
func (s *ChatSeeder) SeedChatData(ctx context.Context, userID string) error {
	now := time.Now()

	sessionID := "11111111-1111-1111-1111-111111111111"
	query := `INSERT INTO ` + s.tables.ChatSessions + ` (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`
	if _, err := s.pool.Exec(ctx, query, sessionID, userID, "Hỏi về Truyện Kiều", now, now); err != nil {
		return err
	}

	turns := []struct {
		role    string
		content string
		offset  time.Duration
	}{
		{"user", "Truyện Kiều của ai sáng tác?", 0},
		{"assistant", "Truyện Kiều là tác phẩm của đại thi hào Nguyễn Du, được viết bằng chữ Nôm theo thể thơ lục bát với 3254 câu.", time.Second},
		{"user", "Nhân vật chính là ai?", 2 * time.Second},
		{"assistant", "Nhân vật chính là Thúy Kiều, một người con gái tài sắc vẹn toàn nhưng có số phận truân chuyên.", 3 * time.Second},
	}

	insert := `INSERT INTO ` + s.tables.ChatMessages + ` (session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4)`
	for _, turn := range turns {
		if _, err := s.pool.Exec(ctx, insert, sessionID, turn.role, turn.content, now.Add(turn.offset)); err != nil {
			return err
		}
	}

	s.logger.Info("seeded sample chat", "session_id", sessionID, "messages", len(turns))
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"minote/internal/domain"
	"minote/internal/domain/models"
	"minote/internal/domain/repositories"
)

// PostgresExternalDataRepository implements the ExternalDataRepository interface using PostgreSQL
type PostgresExternalDataRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewExternalDataRepository creates a new PostgresExternalDataRepository
func NewExternalDataRepository(config *RepositoryConfig) repositories.ExternalDataRepository {
	return &PostgresExternalDataRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetBySource looks up a cached snapshot by source kind and source-specific id
func (r *PostgresExternalDataRepository) GetBySource(ctx context.Context, source models.ExternalSource, sourceID string) (*models.ExternalDataEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, source, source_id, name, content, last_synced_at
		FROM %s
		WHERE source = $1 AND source_id = $2
	`, r.tables.ExternalData)

	var entry models.ExternalDataEntry
	var src string
	err := r.pool.QueryRow(ctx, query, string(source), sourceID).Scan(
		&entry.ID,
		&entry.UserID,
		&src,
		&entry.SourceID,
		&entry.Name,
		&entry.Content,
		&entry.LastSyncedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("external data %s/%s: %w", source, sourceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get external data: %w", err)
	}
	entry.Source = models.ExternalSource(src)

	return &entry, nil
}

// Upsert inserts a snapshot or refreshes the existing one for the same source
func (r *PostgresExternalDataRepository) Upsert(ctx context.Context, entry *models.ExternalDataEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, source, source_id, name, content, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source, source_id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    name = EXCLUDED.name,
		    content = EXCLUDED.content,
		    last_synced_at = EXCLUDED.last_synced_at
		RETURNING id
	`, r.tables.ExternalData)

	err := r.pool.QueryRow(ctx, query,
		entry.UserID,
		string(entry.Source),
		entry.SourceID,
		entry.Name,
		entry.Content,
		entry.LastSyncedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("upsert external data: %w", err)
	}

	return nil
}

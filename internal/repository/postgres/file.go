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

// PostgresFileRepository implements the FileRepository interface using PostgreSQL
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new PostgresFileRepository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create records an uploaded file
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.UploadedFile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, file_name, storage_key, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uploaded_at
	`, r.tables.UploadedFiles)

	err := r.pool.QueryRow(ctx, query,
		file.UserID,
		file.FileName,
		file.StorageKey,
		file.FileType,
		file.FileSize,
	).Scan(&file.ID, &file.UploadedAt)

	if err != nil {
		return fmt.Errorf("create uploaded file: %w", err)
	}

	return nil
}

// GetByID retrieves a file record by id
func (r *PostgresFileRepository) GetByID(ctx context.Context, fileID string) (*models.UploadedFile, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, file_name, storage_key, file_type, file_size, uploaded_at
		FROM %s
		WHERE id = $1
	`, r.tables.UploadedFiles)

	var file models.UploadedFile
	err := r.pool.QueryRow(ctx, query, fileID).Scan(
		&file.ID,
		&file.UserID,
		&file.FileName,
		&file.StorageKey,
		&file.FileType,
		&file.FileSize,
		&file.UploadedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("uploaded file %s: %w", fileID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get uploaded file: %w", err)
	}

	return &file, nil
}

// ListByUser returns the owner's files, newest first
func (r *PostgresFileRepository) ListByUser(ctx context.Context, userID string) ([]models.UploadedFile, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, file_name, storage_key, file_type, file_size, uploaded_at
		FROM %s
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
	`, r.tables.UploadedFiles)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list uploaded files: %w", err)
	}
	defer rows.Close()

	files := make([]models.UploadedFile, 0)
	for rows.Next() {
		var file models.UploadedFile
		if err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.FileName,
			&file.StorageKey,
			&file.FileType,
			&file.FileSize,
			&file.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("scan uploaded file: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploaded files: %w", err)
	}

	return files, nil
}

// Delete removes a file record
func (r *PostgresFileRepository) Delete(ctx context.Context, fileID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.UploadedFiles)

	tag, err := r.pool.Exec(ctx, query, fileID)
	if err != nil {
		return fmt.Errorf("delete uploaded file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("uploaded file %s: %w", fileID, domain.ErrNotFound)
	}

	return nil
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"minote/internal/domain"
	"minote/internal/domain/models"
	"minote/internal/domain/repositories"
)

const documentColumns = `id, user_id, title, parent_id, is_archived, is_published,
	COALESCE(allow_editing, FALSE), is_pinned, content, cover_image, icon, sort_order, created_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, parent_id, is_archived, is_published, allow_editing, is_pinned, content, cover_image, icon, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`, r.tables.Documents)

	err := r.pool.QueryRow(ctx, query,
		doc.UserID,
		doc.Title,
		doc.ParentID,
		doc.IsArchived,
		doc.IsPublished,
		doc.AllowEditing,
		doc.IsPinned,
		doc.Content,
		doc.CoverImage,
		doc.Icon,
		doc.Order,
	).Scan(&doc.ID, &doc.CreatedAt)

	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID without owner scoping; the service layer
// decides visibility (published documents are world-readable).
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, documentColumns, r.tables.Documents)

	doc, err := scanDocument(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return doc, nil
}

// Children returns the direct children of parentID for the owner. A nil
// parentID selects root-level documents.
func (r *PostgresDocumentRepository) Children(ctx context.Context, userID string, parentID *string) ([]models.Document, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s WHERE user_id = $1 AND parent_id IS NULL
		`, documentColumns, r.tables.Documents)
		args = []interface{}{userID}
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s WHERE user_id = $1 AND parent_id = $2
		`, documentColumns, r.tables.Documents)
		args = []interface{}{userID, *parentID}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// ListByUser returns all of the owner's documents, newest first
func (r *PostgresDocumentRepository) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE user_id = $1 ORDER BY created_at DESC
	`, documentColumns, r.tables.Documents)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// Patch applies a partial update and returns the patched document
func (r *PostgresDocumentRepository) Patch(ctx context.Context, id string, patch *repositories.DocumentPatch) (*models.Document, error) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.CoverImage != nil {
		add("cover_image", *patch.CoverImage)
	}
	if patch.Icon != nil {
		add("icon", *patch.Icon)
	}
	if patch.IsPublished != nil {
		add("is_published", *patch.IsPublished)
	}
	if patch.AllowEditing != nil {
		add("allow_editing", *patch.AllowEditing)
	}
	if patch.IsArchived != nil {
		add("is_archived", *patch.IsArchived)
	}
	if patch.IsPinned != nil {
		add("is_pinned", *patch.IsPinned)
	}
	if patch.Order != nil {
		add("sort_order", *patch.Order)
	}
	if patch.ClearParent {
		sets = append(sets, "parent_id = NULL")
	}
	if patch.ClearIcon {
		sets = append(sets, "icon = NULL")
	}
	if patch.ClearCoverImage {
		sets = append(sets, "cover_image = NULL")
	}

	if len(sets) == 0 {
		// Nothing to change; return the current row.
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE %s SET %s WHERE id = $%d RETURNING %s
	`, r.tables.Documents, strings.Join(sets, ", "), len(args), documentColumns)

	doc, err := scanDocument(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("patch document: %w", err)
	}

	return doc, nil
}

// Delete removes a single document. Children keep their parent reference.
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Documents)

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteArchivedByUser bulk-deletes the owner's archived documents
func (r *PostgresDocumentRepository) DeleteArchivedByUser(ctx context.Context, userID string) (int, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE user_id = $1 AND is_archived = TRUE
	`, r.tables.Documents)

	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete archived documents: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// scanDocument scans one document row in documentColumns order.
func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.ParentID,
		&doc.IsArchived,
		&doc.IsPublished,
		&doc.AllowEditing,
		&doc.IsPinned,
		&doc.Content,
		&doc.CoverImage,
		&doc.Icon,
		&doc.Order,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func collectDocuments(rows pgx.Rows) ([]models.Document, error) {
	docs := make([]models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

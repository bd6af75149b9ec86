package repositories

import (
	"context"

	"minote/internal/domain/models"
)

// DocumentPatch describes a partial update to a document. Nil fields are left
// untouched. Clear* flags null out optional columns (JSON patches cannot
// distinguish "unset" from "absent" with plain pointers).
type DocumentPatch struct {
	Title        *string
	Content      *string
	CoverImage   *string
	Icon         *string
	IsPublished  *bool
	AllowEditing *bool
	IsArchived   *bool
	IsPinned     *bool
	Order        *int

	ClearParent     bool
	ClearIcon       bool
	ClearCoverImage bool
}

// DocumentRepository is the documents collection of the record store.
// All queries are point lookups or indexed scans by owner / (owner, parent);
// tree semantics live in the service layer.
type DocumentRepository interface {
	// Create inserts a new document and fills in its generated ID and
	// creation timestamp.
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document by ID with no owner scoping; callers
	// decide visibility. Returns domain.ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// Children returns the direct children of parentID for the owner.
	// A nil parentID selects root-level documents.
	Children(ctx context.Context, userID string, parentID *string) ([]models.Document, error)

	// ListByUser returns all of the owner's documents, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Document, error)

	// Patch applies a partial update and returns the patched document.
	// Returns domain.ErrNotFound if missing.
	Patch(ctx context.Context, id string, patch *DocumentPatch) (*models.Document, error)

	// Delete removes a single document. Child documents keep their parent
	// reference; dangling references are tolerated.
	Delete(ctx context.Context, id string) error

	// DeleteArchivedByUser bulk-deletes the owner's archived documents and
	// returns how many rows were removed.
	DeleteArchivedByUser(ctx context.Context, userID string) (int, error)
}

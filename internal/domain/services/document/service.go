package document

import (
	"context"

	"minote/internal/domain/models"
)

// CreateRequest carries the fields a caller may set when creating a document.
type CreateRequest struct {
	UserID   string  `json:"-"`
	Title    string  `json:"title"`
	ParentID *string `json:"parent_document,omitempty"`
}

// UpdateRequest is a partial document update. The caller may be anonymous:
// the service decides per field what the caller is allowed to touch.
type UpdateRequest struct {
	Title        *string `json:"title,omitempty"`
	Content      *string `json:"content,omitempty"`
	CoverImage   *string `json:"cover_image,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	IsPublished  *bool   `json:"is_published,omitempty"`
	AllowEditing *bool   `json:"allow_editing,omitempty"`
}

// Service owns the documents collection's hierarchical invariants:
// archive/restore/pin propagation, sibling ordering and visibility filtering.
//
// Propagation is best-effort by design: the target is patched before its
// descendants, no transaction spans the traversal, and a failure mid-walk
// leaves a partially flagged subtree.
type Service interface {
	Create(ctx context.Context, req *CreateRequest) (*models.Document, error)

	// Archive sets is_archived on the target and every descendant.
	Archive(ctx context.Context, documentID, userID string) (*models.Document, error)

	// Restore clears is_archived on the target and every descendant. When
	// the target's parent is itself still archived, the target is detached
	// (parent reference cleared) instead of staying nested under it.
	Restore(ctx context.Context, documentID, userID string) (*models.Document, error)

	// Pin and Unpin propagate is_pinned over the subtree, independent of
	// archived state.
	Pin(ctx context.Context, documentID, userID string) (*models.Document, error)
	Unpin(ctx context.Context, documentID, userID string) (*models.Document, error)

	// Reorder writes the caller-supplied sibling-order key. Contiguity and
	// uniqueness within the sibling group are the caller's business.
	Reorder(ctx context.Context, documentID string, newOrder int, userID string) (*models.Document, error)

	// ListSidebar returns non-archived, non-pinned direct children of
	// parentID, ordered for display.
	ListSidebar(ctx context.Context, userID string, parentID *string) ([]models.Document, error)

	// ListPinned returns every pinned, non-archived document of the owner at
	// any depth; clients rebuild nesting from parent back-references.
	ListPinned(ctx context.Context, userID string) ([]models.Document, error)

	// ListTrash returns the owner's archived documents, newest first.
	ListTrash(ctx context.Context, userID string) ([]models.Document, error)

	// Search returns the owner's non-archived, non-pinned documents, newest
	// first (the sidebar search source list).
	Search(ctx context.Context, userID string) ([]models.Document, error)

	// GetByID resolves a document for an identified or anonymous caller.
	// Published, non-archived documents are readable by anyone; everything
	// else requires the owner. userID may be empty (anonymous).
	GetByID(ctx context.Context, documentID, userID string) (*models.Document, error)

	// Update patches a document. Owners may change any allowed field; a
	// non-owner may change only content, and only while the document is
	// published, not archived and open for editing.
	Update(ctx context.Context, documentID, userID string, req *UpdateRequest) (*models.Document, error)

	// RemoveIcon and RemoveCoverImage clear the respective field (owner only).
	RemoveIcon(ctx context.Context, documentID, userID string) (*models.Document, error)
	RemoveCoverImage(ctx context.Context, documentID, userID string) (*models.Document, error)

	// Remove deletes a single document (owner only).
	Remove(ctx context.Context, documentID, userID string) error

	// RemoveAllArchived empties the owner's trash and returns the count.
	RemoveAllArchived(ctx context.Context, userID string) (int, error)
}

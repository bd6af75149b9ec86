package repositories

import (
	"context"

	"minote/internal/domain/models"
)

// FileRepository is the uploaded-files metadata collection.
type FileRepository interface {
	// Create inserts a metadata row and fills in its generated ID.
	Create(ctx context.Context, file *models.UploadedFile) error

	// GetByID retrieves a file row with no owner scoping (the serving path
	// is public). Returns domain.ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (*models.UploadedFile, error)

	// ListByUser returns the owner's files, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.UploadedFile, error)

	// Delete removes a metadata row.
	Delete(ctx context.Context, id string) error
}

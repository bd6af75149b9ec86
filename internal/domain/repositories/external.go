package repositories

import (
	"context"

	"minote/internal/domain/models"
)

// ExternalDataRepository is the external data cache collection.
// Entries are keyed by (source, source_id) with upsert semantics.
type ExternalDataRepository interface {
	// GetBySource returns the entry for a source pair, or domain.ErrNotFound.
	GetBySource(ctx context.Context, source models.ExternalSource, sourceID string) (*models.ExternalDataEntry, error)

	// Upsert inserts the entry or overwrites the existing one in place.
	Upsert(ctx context.Context, entry *models.ExternalDataEntry) error
}

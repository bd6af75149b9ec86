package models

import (
	"time"
)

// ExternalSource identifies the kind of external data source a cache entry
// was fetched from.
type ExternalSource string

const (
	SourceGoogleSheet ExternalSource = "google_sheet"
	SourceAirtable    ExternalSource = "airtable"
	SourceOther       ExternalSource = "other"
)

// ExternalDataEntry is a memoized fetch of a spreadsheet-like source.
// At most one entry exists per (Source, SourceID) pair; refreshes overwrite
// in place. Entries older than the freshness window are ignored, not deleted.
type ExternalDataEntry struct {
	ID           string         `json:"id" db:"id"`
	UserID       string         `json:"user_id" db:"user_id"`
	Source       ExternalSource `json:"source" db:"source"`
	SourceID     string         `json:"source_id" db:"source_id"`
	Name         string         `json:"name" db:"name"`
	Content      string         `json:"content" db:"content"`
	LastSyncedAt time.Time      `json:"last_synced_at" db:"last_synced_at"`
}

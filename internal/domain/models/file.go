package models

import (
	"time"
)

// UploadedFile is the metadata row for a file the client uploaded directly
// to object storage via a presigned URL. StorageKey is the object key in the
// bucket; the binary itself never passes through this service.
type UploadedFile struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	StorageKey string    `json:"storage_key" db:"storage_key"`
	FileType   string    `json:"file_type" db:"file_type"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`

	// URL is populated on read with a signed retrieval URL; never stored.
	URL string `json:"url,omitempty" db:"-"`
}

package file

import (
	"context"

	"minote/internal/domain/models"
)

// UploadTicket is what a client needs to upload a file directly to object
// storage: a presigned PUT URL and the storage key to report back once the
// upload completes.
type UploadTicket struct {
	UploadURL  string `json:"upload_url"`
	StorageKey string `json:"storage_key"`
}

// SaveFileRequest persists metadata after the client finished its upload.
type SaveFileRequest struct {
	UserID     string `json:"-"`
	FileName   string `json:"file_name"`
	StorageKey string `json:"storage_key"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
}

// Service is the uploaded-files surface: upload-URL issuance, metadata
// persistence and signed retrieval.
type Service interface {
	IssueUploadURL(ctx context.Context, userID, fileName, fileType string) (*UploadTicket, error)
	SaveFile(ctx context.Context, req *SaveFileRequest) (*models.UploadedFile, error)

	// ListFiles returns the owner's files, newest first, each carrying a
	// fresh signed retrieval URL.
	ListFiles(ctx context.Context, userID string) ([]models.UploadedFile, error)

	// ResolveURL returns a signed retrieval URL for a file. This is the
	// public serving path; no caller identity is required.
	ResolveURL(ctx context.Context, fileID string) (string, error)

	DeleteFile(ctx context.Context, fileID, userID string) error
}

package file

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"minote/internal/config"
	"minote/internal/domain"
	"minote/internal/domain/models"
	"minote/internal/domain/repositories"
	filesvc "minote/internal/domain/services/file"
	"minote/internal/storage"
)

// fileService implements the uploaded-files Service interface
type fileService struct {
	fileRepo repositories.FileRepository
	store    storage.ObjectStore
	logger   *slog.Logger
}

// NewService creates a new file service over the given object store
func NewService(fileRepo repositories.FileRepository, store storage.ObjectStore, logger *slog.Logger) filesvc.Service {
	return &fileService{
		fileRepo: fileRepo,
		store:    store,
		logger:   logger,
	}
}

// IssueUploadURL hands the client a presigned PUT URL. The client uploads
// directly to object storage and reports the key back via SaveFile.
func (s *fileService) IssueUploadURL(ctx context.Context, userID, fileName, fileType string) (*filesvc.UploadTicket, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name required", domain.ErrValidation)
	}

	key := fmt.Sprintf("uploads/%s/%s/%s", userID, uuid.NewString(), fileName)

	uploadURL, err := s.store.PresignPut(ctx, key, config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("issue upload url: %w", err)
	}

	return &filesvc.UploadTicket{
		UploadURL:  uploadURL,
		StorageKey: key,
	}, nil
}

// SaveFile persists upload metadata once the client finished its direct upload.
func (s *fileService) SaveFile(ctx context.Context, req *filesvc.SaveFileRequest) (*models.UploadedFile, error) {
	if req.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.FileName, validation.Required),
		validation.Field(&req.StorageKey, validation.Required),
		validation.Field(&req.FileSize, validation.Min(int64(0))),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	file := &models.UploadedFile{
		UserID:     req.UserID,
		FileName:   req.FileName,
		StorageKey: req.StorageKey,
		FileType:   req.FileType,
		FileSize:   req.FileSize,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file saved", "id", file.ID, "user_id", req.UserID, "size", req.FileSize)

	return file, nil
}

// ListFiles returns the owner's files, each with a fresh signed retrieval URL.
func (s *fileService) ListFiles(ctx context.Context, userID string) ([]models.UploadedFile, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	files, err := s.fileRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range files {
		url, err := s.store.PresignGet(ctx, files[i].StorageKey, config.DownloadURLExpiry)
		if err != nil {
			s.logger.Warn("failed to sign file url", "file_id", files[i].ID, "error", err)
			continue
		}
		files[i].URL = url
	}

	return files, nil
}

// ResolveURL signs a retrieval URL for a single file. Public serving path:
// file ids are unguessable, no caller identity is required.
func (s *fileService) ResolveURL(ctx context.Context, fileID string) (string, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return "", err
	}

	return s.store.PresignGet(ctx, file.StorageKey, config.DownloadURLExpiry)
}

// DeleteFile removes the stored object and then the metadata row.
func (s *fileService) DeleteFile(ctx context.Context, fileID, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file.UserID != userID {
		return domain.ErrForbidden
	}

	if err := s.store.Delete(ctx, file.StorageKey); err != nil {
		// A failed object delete does not block removing the metadata row.
		s.logger.Warn("failed to delete stored object", "file_id", fileID, "key", file.StorageKey, "error", err)
	}

	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return err
	}

	s.logger.Info("file deleted", "id", fileID, "user_id", userID)

	return nil
}

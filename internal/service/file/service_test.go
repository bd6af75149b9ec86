package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"minote/internal/domain"
	"minote/internal/domain/models"
	filesvc "minote/internal/domain/services/file"
)

// memFileRepo is an in-memory FileRepository.
type memFileRepo struct {
	files map[string]*models.UploadedFile
	seq   int
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: make(map[string]*models.UploadedFile)}
}

func (m *memFileRepo) Create(_ context.Context, file *models.UploadedFile) error {
	m.seq++
	file.ID = fmt.Sprintf("file-%d", m.seq)
	file.UploadedAt = time.Now().Add(time.Duration(m.seq) * time.Second)
	stored := *file
	m.files[file.ID] = &stored
	return nil
}

func (m *memFileRepo) GetByID(_ context.Context, fileID string) (*models.UploadedFile, error) {
	file, ok := m.files[fileID]
	if !ok {
		return nil, fmt.Errorf("uploaded file: %w", domain.ErrNotFound)
	}
	copied := *file
	return &copied, nil
}

func (m *memFileRepo) ListByUser(_ context.Context, userID string) ([]models.UploadedFile, error) {
	out := make([]models.UploadedFile, 0)
	for _, f := range m.files {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *memFileRepo) Delete(_ context.Context, fileID string) error {
	if _, ok := m.files[fileID]; !ok {
		return fmt.Errorf("uploaded file: %w", domain.ErrNotFound)
	}
	delete(m.files, fileID)
	return nil
}

// fakeObjectStore signs deterministic URLs and records deletes.
type fakeObjectStore struct {
	deleted   []string
	deleteErr error
}

func (f *fakeObjectStore) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://store.test/put/" + key, nil
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://store.test/get/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func newFileTestService(repo *memFileRepo, store *fakeObjectStore) filesvc.Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(repo, store, logger)
}

func TestIssueUploadURL_ReturnsTicket(t *testing.T) {
	svc := newFileTestService(newMemFileRepo(), &fakeObjectStore{})

	ticket, err := svc.IssueUploadURL(context.Background(), "alice", "notes.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("IssueUploadURL failed: %v", err)
	}
	if !strings.HasPrefix(ticket.StorageKey, "uploads/alice/") || !strings.HasSuffix(ticket.StorageKey, "/notes.pdf") {
		t.Errorf("unexpected storage key %q", ticket.StorageKey)
	}
	if ticket.UploadURL != "https://store.test/put/"+ticket.StorageKey {
		t.Errorf("unexpected upload url %q", ticket.UploadURL)
	}

	if _, err := svc.IssueUploadURL(context.Background(), "", "notes.pdf", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.IssueUploadURL(context.Background(), "alice", "", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestSaveFile_PersistsMetadata(t *testing.T) {
	repo := newMemFileRepo()
	svc := newFileTestService(repo, &fakeObjectStore{})

	file, err := svc.SaveFile(context.Background(), &filesvc.SaveFileRequest{
		UserID:     "alice",
		FileName:   "notes.pdf",
		StorageKey: "uploads/alice/k/notes.pdf",
		FileType:   "application/pdf",
		FileSize:   1024,
	})
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	if file.ID == "" || file.UploadedAt.IsZero() {
		t.Errorf("expected generated id and timestamp: %+v", file)
	}

	_, err = svc.SaveFile(context.Background(), &filesvc.SaveFileRequest{UserID: "alice"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for missing fields, got %v", err)
	}
}

func TestListFiles_SignsRetrievalURLs(t *testing.T) {
	repo := newMemFileRepo()
	svc := newFileTestService(repo, &fakeObjectStore{})
	ctx := context.Background()

	for _, name := range []string{"a.png", "b.png"} {
		if _, err := svc.SaveFile(ctx, &filesvc.SaveFileRequest{
			UserID:     "alice",
			FileName:   name,
			StorageKey: "uploads/alice/k/" + name,
			FileSize:   1,
		}); err != nil {
			t.Fatalf("SaveFile failed: %v", err)
		}
	}
	if _, err := svc.SaveFile(ctx, &filesvc.SaveFileRequest{
		UserID:     "bob",
		FileName:   "c.png",
		StorageKey: "uploads/bob/k/c.png",
		FileSize:   1,
	}); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	files, err := svc.ListFiles(ctx, "alice")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].FileName != "b.png" {
		t.Errorf("expected newest first, got %q", files[0].FileName)
	}
	for _, f := range files {
		if f.URL != "https://store.test/get/"+f.StorageKey {
			t.Errorf("unexpected signed url %q", f.URL)
		}
	}
}

func TestResolveURL_PublicPath(t *testing.T) {
	repo := newMemFileRepo()
	svc := newFileTestService(repo, &fakeObjectStore{})
	ctx := context.Background()

	file, err := svc.SaveFile(ctx, &filesvc.SaveFileRequest{
		UserID:     "alice",
		FileName:   "a.png",
		StorageKey: "uploads/alice/k/a.png",
		FileSize:   1,
	})
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	url, err := svc.ResolveURL(ctx, file.ID)
	if err != nil {
		t.Fatalf("ResolveURL failed: %v", err)
	}
	if url != "https://store.test/get/uploads/alice/k/a.png" {
		t.Errorf("unexpected url %q", url)
	}

	if _, err := svc.ResolveURL(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteFile_RemovesObjectAndRow(t *testing.T) {
	repo := newMemFileRepo()
	store := &fakeObjectStore{}
	svc := newFileTestService(repo, store)
	ctx := context.Background()

	file, err := svc.SaveFile(ctx, &filesvc.SaveFileRequest{
		UserID:     "alice",
		FileName:   "a.png",
		StorageKey: "uploads/alice/k/a.png",
		FileSize:   1,
	})
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	if err := svc.DeleteFile(ctx, file.ID, "bob"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}

	if err := svc.DeleteFile(ctx, file.ID, "alice"); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "uploads/alice/k/a.png" {
		t.Errorf("expected object deleted, got %v", store.deleted)
	}
	if _, ok := repo.files[file.ID]; ok {
		t.Error("expected metadata row removed")
	}
}

func TestDeleteFile_ObjectFailureStillRemovesRow(t *testing.T) {
	repo := newMemFileRepo()
	store := &fakeObjectStore{deleteErr: errors.New("storage down")}
	svc := newFileTestService(repo, store)
	ctx := context.Background()

	file, err := svc.SaveFile(ctx, &filesvc.SaveFileRequest{
		UserID:     "alice",
		FileName:   "a.png",
		StorageKey: "uploads/alice/k/a.png",
		FileSize:   1,
	})
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	if err := svc.DeleteFile(ctx, file.ID, "alice"); err != nil {
		t.Fatalf("DeleteFile must tolerate object delete failure: %v", err)
	}
	if _, ok := repo.files[file.ID]; ok {
		t.Error("expected metadata row removed despite storage failure")
	}
}

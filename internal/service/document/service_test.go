package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"minote/internal/domain"
	"minote/internal/domain/models"
	"minote/internal/domain/repositories"
	docsvc "minote/internal/domain/services/document"
)

// fakeDocumentRepo is an in-memory DocumentRepository for service tests.
type fakeDocumentRepo struct {
	docs  map[string]*models.Document
	seq   int
	clock time.Time
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		docs:  make(map[string]*models.Document),
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	f.seq++
	f.clock = f.clock.Add(time.Second)
	doc.ID = fmt.Sprintf("doc-%d", f.seq)
	doc.CreatedAt = f.clock
	stored := *doc
	f.docs[doc.ID] = &stored
	return nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id string) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepo) Children(_ context.Context, userID string, parentID *string) ([]models.Document, error) {
	out := make([]models.Document, 0)
	for _, doc := range f.docs {
		if doc.UserID != userID {
			continue
		}
		if parentID == nil {
			if doc.ParentID == nil {
				out = append(out, *doc)
			}
		} else if doc.ParentID != nil && *doc.ParentID == *parentID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepo) ListByUser(_ context.Context, userID string) ([]models.Document, error) {
	out := make([]models.Document, 0)
	for _, doc := range f.docs {
		if doc.UserID == userID {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeDocumentRepo) Patch(_ context.Context, id string, patch *repositories.DocumentPatch) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Content != nil {
		doc.Content = patch.Content
	}
	if patch.CoverImage != nil {
		doc.CoverImage = patch.CoverImage
	}
	if patch.Icon != nil {
		doc.Icon = patch.Icon
	}
	if patch.IsPublished != nil {
		doc.IsPublished = *patch.IsPublished
	}
	if patch.AllowEditing != nil {
		doc.AllowEditing = *patch.AllowEditing
	}
	if patch.IsArchived != nil {
		doc.IsArchived = *patch.IsArchived
	}
	if patch.IsPinned != nil {
		doc.IsPinned = *patch.IsPinned
	}
	if patch.Order != nil {
		doc.Order = patch.Order
	}
	if patch.ClearParent {
		doc.ParentID = nil
	}
	if patch.ClearIcon {
		doc.Icon = nil
	}
	if patch.ClearCoverImage {
		doc.CoverImage = nil
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeDocumentRepo) DeleteArchivedByUser(_ context.Context, userID string) (int, error) {
	count := 0
	for id, doc := range f.docs {
		if doc.UserID == userID && doc.IsArchived {
			delete(f.docs, id)
			count++
		}
	}
	return count, nil
}

func newTestService(repo *fakeDocumentRepo) docsvc.Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(repo, logger)
}

func mustCreate(t *testing.T, svc docsvc.Service, userID, title string, parentID *string) *models.Document {
	t.Helper()
	doc, err := svc.Create(context.Background(), &docsvc.CreateRequest{UserID: userID, Title: title, ParentID: parentID})
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", title, err)
	}
	return doc
}

func TestCreate_AssignsSiblingOrder(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)

	first := mustCreate(t, svc, "alice", "first", nil)
	second := mustCreate(t, svc, "alice", "second", nil)

	if first.Order == nil || *first.Order != 1 {
		t.Errorf("expected first root order 1, got %v", first.Order)
	}
	if second.Order == nil || *second.Order != 2 {
		t.Errorf("expected second root order 2, got %v", second.Order)
	}
}

func TestCreate_ChildInheritsPinAndOrdersWithinPartition(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)

	parent := mustCreate(t, svc, "alice", "parent", nil)
	if _, err := svc.Pin(context.Background(), parent.ID, "alice"); err != nil {
		t.Fatalf("Pin failed: %v", err)
	}

	// A root sibling with no parent inherits nothing and orders in the
	// unpinned partition, where the now-pinned parent no longer counts.
	sibling := mustCreate(t, svc, "alice", "root sibling", nil)
	if sibling.IsPinned {
		t.Error("root sibling must not be pinned")
	}
	if sibling.Order == nil || *sibling.Order != 1 {
		t.Errorf("expected root sibling order 1, got %v", sibling.Order)
	}

	child := mustCreate(t, svc, "alice", "child", &parent.ID)
	if !child.IsPinned {
		t.Error("expected child of pinned parent to be pinned")
	}
	if child.Order == nil || *child.Order != 1 {
		t.Errorf("expected first child order 1, got %v", child.Order)
	}

	second := mustCreate(t, svc, "alice", "child two", &parent.ID)
	if second.Order == nil || *second.Order != 2 {
		t.Errorf("expected second child order 2, got %v", second.Order)
	}
}

func TestCreate_RejectsForeignParent(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)

	parent := mustCreate(t, svc, "alice", "parent", nil)

	_, err := svc.Create(context.Background(), &docsvc.CreateRequest{UserID: "bob", Title: "child", ParentID: &parent.ID})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestCreate_RejectsEmptyTitle(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), &docsvc.CreateRequest{UserID: "alice", Title: ""})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestArchive_PropagatesToDescendants(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "alice", "root", nil)
	child := mustCreate(t, svc, "alice", "child", &root.ID)
	grandchild := mustCreate(t, svc, "alice", "grandchild", &child.ID)
	other := mustCreate(t, svc, "alice", "unrelated", nil)

	patched, err := svc.Archive(context.Background(), root.ID, "alice")
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if !patched.IsArchived {
		t.Error("expected target to be archived")
	}
	for _, id := range []string{child.ID, grandchild.ID} {
		if !repo.docs[id].IsArchived {
			t.Errorf("expected descendant %s to be archived", id)
		}
	}
	if repo.docs[other.ID].IsArchived {
		t.Error("unrelated document must not be archived")
	}
}

func TestRestore_PropagatesAndKeepsParentWhenParentActive(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "alice", "root", nil)
	child := mustCreate(t, svc, "alice", "child", &root.ID)
	grandchild := mustCreate(t, svc, "alice", "grandchild", &child.ID)

	if _, err := svc.Archive(context.Background(), root.ID, "alice"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	restored, err := svc.Restore(context.Background(), root.ID, "alice")
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.IsArchived {
		t.Error("expected target restored")
	}
	if repo.docs[child.ID].IsArchived || repo.docs[grandchild.ID].IsArchived {
		t.Error("expected descendants restored")
	}
}

func TestRestore_DetachesWhenParentStillArchived(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "alice", "root", nil)
	child := mustCreate(t, svc, "alice", "child", &root.ID)

	if _, err := svc.Archive(context.Background(), root.ID, "alice"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	restored, err := svc.Restore(context.Background(), child.ID, "alice")
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.IsArchived {
		t.Error("expected child restored")
	}
	if restored.ParentID != nil {
		t.Errorf("expected child detached from archived parent, got parent %v", *restored.ParentID)
	}
}

func TestPin_PropagatesIndependentOfArchivedState(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)

	root := mustCreate(t, svc, "alice", "root", nil)
	child := mustCreate(t, svc, "alice", "child", &root.ID)

	if _, err := svc.Archive(context.Background(), child.ID, "alice"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	if _, err := svc.Pin(context.Background(), root.ID, "alice"); err != nil {
		t.Fatalf("Pin failed: %v", err)
	}
	if !repo.docs[child.ID].IsPinned {
		t.Error("expected archived child to be pinned too")
	}
	if !repo.docs[child.ID].IsArchived {
		t.Error("pin must not touch archived state")
	}

	if _, err := svc.Unpin(context.Background(), root.ID, "alice"); err != nil {
		t.Fatalf("Unpin failed: %v", err)
	}
	if repo.docs[child.ID].IsPinned {
		t.Error("expected child unpinned")
	}
}

func TestReorder_WritesOrderAsIs(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)

	doc := mustCreate(t, svc, "alice", "doc", nil)

	patched, err := svc.Reorder(context.Background(), doc.ID, 42, "alice")
	if err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	if patched.Order == nil || *patched.Order != 42 {
		t.Errorf("expected order 42, got %v", patched.Order)
	}
}

func TestListSidebar_FiltersAndSorts(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	a := mustCreate(t, svc, "alice", "a", nil) // order 1
	b := mustCreate(t, svc, "alice", "b", nil) // order 2
	c := mustCreate(t, svc, "alice", "c", nil) // order 3, will lose its order
	archived := mustCreate(t, svc, "alice", "archived", nil)
	pinned := mustCreate(t, svc, "alice", "pinned", nil)

	if _, err := svc.Archive(ctx, archived.ID, "alice"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if _, err := svc.Pin(ctx, pinned.ID, "alice"); err != nil {
		t.Fatalf("Pin failed: %v", err)
	}
	// Swap a and b, drop c's order entirely.
	if _, err := svc.Reorder(ctx, a.ID, 5, "alice"); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	repo.docs[c.ID].Order = nil

	docs, err := svc.ListSidebar(ctx, "alice", nil)
	if err != nil {
		t.Fatalf("ListSidebar failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 sidebar documents, got %d", len(docs))
	}
	want := []string{b.ID, a.ID, c.ID}
	for i, id := range want {
		if docs[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, docs[i].ID)
		}
	}
}

func TestListPinned_IncludesNestedPinned(t *testing.T) {
	svc := newTestService(newFakeDocumentRepo())
	ctx := context.Background()

	root := mustCreate(t, svc, "alice", "root", nil)
	child := mustCreate(t, svc, "alice", "child", &root.ID)
	mustCreate(t, svc, "alice", "loose", nil)

	if _, err := svc.Pin(ctx, root.ID, "alice"); err != nil {
		t.Fatalf("Pin failed: %v", err)
	}

	docs, err := svc.ListPinned(ctx, "alice")
	if err != nil {
		t.Fatalf("ListPinned failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 pinned documents, got %d", len(docs))
	}
	found := map[string]bool{}
	for _, d := range docs {
		found[d.ID] = true
	}
	if !found[root.ID] || !found[child.ID] {
		t.Errorf("expected root and child pinned, got %v", found)
	}
}

func TestListTrash_NewestFirst(t *testing.T) {
	svc := newTestService(newFakeDocumentRepo())
	ctx := context.Background()

	old := mustCreate(t, svc, "alice", "old", nil)
	recent := mustCreate(t, svc, "alice", "recent", nil)
	mustCreate(t, svc, "alice", "kept", nil)

	for _, id := range []string{old.ID, recent.ID} {
		if _, err := svc.Archive(ctx, id, "alice"); err != nil {
			t.Fatalf("Archive failed: %v", err)
		}
	}

	docs, err := svc.ListTrash(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTrash failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 trashed documents, got %d", len(docs))
	}
	if docs[0].ID != recent.ID || docs[1].ID != old.ID {
		t.Errorf("expected newest first, got %s then %s", docs[0].ID, docs[1].ID)
	}
}

func TestGetByID_PublicReadAndOwnerScoping(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	private := mustCreate(t, svc, "alice", "private", nil)
	published := mustCreate(t, svc, "alice", "published", nil)
	yes := true
	if _, err := svc.Update(ctx, published.ID, "alice", &docsvc.UpdateRequest{IsPublished: &yes}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	// Anyone can read a published document.
	if _, err := svc.GetByID(ctx, published.ID, ""); err != nil {
		t.Errorf("anonymous read of published document failed: %v", err)
	}
	if _, err := svc.GetByID(ctx, published.ID, "bob"); err != nil {
		t.Errorf("non-owner read of published document failed: %v", err)
	}

	// Private documents require the owner.
	if _, err := svc.GetByID(ctx, private.ID, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for anonymous read, got %v", err)
	}
	if _, err := svc.GetByID(ctx, private.ID, "bob"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner read, got %v", err)
	}
	if _, err := svc.GetByID(ctx, private.ID, "alice"); err != nil {
		t.Errorf("owner read failed: %v", err)
	}

	// Archiving closes the public read path.
	if _, err := svc.Archive(ctx, published.ID, "alice"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if _, err := svc.GetByID(ctx, published.ID, "bob"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden after archiving, got %v", err)
	}
}

func TestUpdate_OwnerPatchesAllFields(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := mustCreate(t, svc, "alice", "doc", nil)

	title := "renamed"
	content := "body"
	yes := true
	patched, err := svc.Update(ctx, doc.ID, "alice", &docsvc.UpdateRequest{
		Title:        &title,
		Content:      &content,
		IsPublished:  &yes,
		AllowEditing: &yes,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if patched.Title != "renamed" || patched.Content == nil || *patched.Content != "body" {
		t.Errorf("unexpected patched document: %+v", patched)
	}
	if !patched.IsPublished || !patched.AllowEditing {
		t.Error("expected publish and allow-edit flags set")
	}
}

func TestUpdate_NonOwnerContentOnPublicEditable(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := mustCreate(t, svc, "alice", "doc", nil)
	yes := true
	if _, err := svc.Update(ctx, doc.ID, "alice", &docsvc.UpdateRequest{IsPublished: &yes, AllowEditing: &yes}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	content := "edited by guest"
	patched, err := svc.Update(ctx, doc.ID, "bob", &docsvc.UpdateRequest{Content: &content})
	if err != nil {
		t.Fatalf("non-owner content update failed: %v", err)
	}
	if patched.Content == nil || *patched.Content != "edited by guest" {
		t.Errorf("expected content updated, got %v", patched.Content)
	}

	// A non-owner may not smuggle other fields alongside content.
	title := "hijacked"
	if _, err := svc.Update(ctx, doc.ID, "bob", &docsvc.UpdateRequest{Title: &title, Content: &content}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if repo.docs[doc.ID].Title != "doc" {
		t.Errorf("non-owner must not change title, got %q", repo.docs[doc.ID].Title)
	}
}

func TestUpdate_NonOwnerWithoutContentIsSilentNoOp(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := mustCreate(t, svc, "alice", "doc", nil)
	yes := true
	if _, err := svc.Update(ctx, doc.ID, "alice", &docsvc.UpdateRequest{IsPublished: &yes, AllowEditing: &yes}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	title := "hijacked"
	got, err := svc.Update(ctx, doc.ID, "bob", &docsvc.UpdateRequest{Title: &title})
	if err != nil {
		t.Fatalf("expected silent no-op, got error: %v", err)
	}
	if got.Title != "doc" {
		t.Errorf("expected unmodified document back, got title %q", got.Title)
	}
	if repo.docs[doc.ID].Title != "doc" {
		t.Error("store must be unchanged")
	}
}

func TestUpdate_RejectedWhenNotEditable(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	private := mustCreate(t, svc, "alice", "private", nil)
	published := mustCreate(t, svc, "alice", "published", nil)
	yes := true
	if _, err := svc.Update(ctx, published.ID, "alice", &docsvc.UpdateRequest{IsPublished: &yes}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	content := "x"
	if _, err := svc.Update(ctx, private.ID, "", &docsvc.UpdateRequest{Content: &content}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for anonymous update, got %v", err)
	}
	if _, err := svc.Update(ctx, private.ID, "bob", &docsvc.UpdateRequest{Content: &content}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner update, got %v", err)
	}
	// Published but allow_editing false.
	if _, err := svc.Update(ctx, published.ID, "bob", &docsvc.UpdateRequest{Content: &content}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden when editing disabled, got %v", err)
	}
}

func TestRemoveIconAndCoverImage(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := mustCreate(t, svc, "alice", "doc", nil)
	icon := ":tada:"
	cover := "https://cdn.example.com/cover.png"
	if _, err := svc.Update(ctx, doc.ID, "alice", &docsvc.UpdateRequest{Icon: &icon, CoverImage: &cover}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	patched, err := svc.RemoveIcon(ctx, doc.ID, "alice")
	if err != nil {
		t.Fatalf("RemoveIcon failed: %v", err)
	}
	if patched.Icon != nil {
		t.Error("expected icon cleared")
	}

	patched, err = svc.RemoveCoverImage(ctx, doc.ID, "alice")
	if err != nil {
		t.Fatalf("RemoveCoverImage failed: %v", err)
	}
	if patched.CoverImage != nil {
		t.Error("expected cover image cleared")
	}

	if _, err := svc.RemoveIcon(ctx, doc.ID, "bob"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}
}

func TestRemoveAllArchived_ReturnsCountAndToleratesDanglingChildren(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	root := mustCreate(t, svc, "alice", "root", nil)
	child := mustCreate(t, svc, "alice", "child", &root.ID)
	mustCreate(t, svc, "alice", "kept", nil)

	// Archive only the parent directly via the repository so the child keeps
	// pointing at it after the bulk delete.
	archived := true
	if _, err := repo.Patch(ctx, root.ID, &repositories.DocumentPatch{IsArchived: &archived}); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}

	count, err := svc.RemoveAllArchived(ctx, "alice")
	if err != nil {
		t.Fatalf("RemoveAllArchived failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 deleted, got %d", count)
	}
	survivor, err := repo.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("child should survive: %v", err)
	}
	if survivor.ParentID == nil || *survivor.ParentID != root.ID {
		t.Error("expected child to keep its dangling parent reference")
	}
}

func TestRemove_OwnerOnly(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc := mustCreate(t, svc, "alice", "doc", nil)

	if err := svc.Remove(ctx, doc.ID, "bob"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Remove(ctx, doc.ID, "alice"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected document gone, got %v", err)
	}
}

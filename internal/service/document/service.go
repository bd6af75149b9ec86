package document

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"minote/internal/config"
	"minote/internal/domain"
	"minote/internal/domain/models"
	"minote/internal/domain/repositories"
	docsvc "minote/internal/domain/services/document"
)

// treeService implements the document Service interface
type treeService struct {
	docRepo repositories.DocumentRepository
	logger  *slog.Logger
}

// NewService creates a new document tree service
func NewService(docRepo repositories.DocumentRepository, logger *slog.Logger) docsvc.Service {
	return &treeService{
		docRepo: docRepo,
		logger:  logger,
	}
}

// Create inserts a new document. A child starts out with its parent's pin
// state and the next free sibling order within the same pin partition.
func (s *treeService) Create(ctx context.Context, req *docsvc.CreateRequest) (*models.Document, error) {
	if req.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxDocumentTitleLength),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	pinned := false
	if req.ParentID != nil {
		parent, err := s.docRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.UserID != req.UserID {
			return nil, domain.ErrForbidden
		}
		pinned = parent.IsPinned
	}

	order, err := s.nextSiblingOrder(ctx, req.UserID, req.ParentID, pinned)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		UserID:   req.UserID,
		Title:    req.Title,
		ParentID: req.ParentID,
		IsPinned: pinned,
		Order:    &order,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"user_id", doc.UserID,
		"parent_id", req.ParentID,
		"order", order,
	)

	return doc, nil
}

// Archive flags the target and then walks its subtree flagging every
// descendant. The walk is not transactional: a failure mid-walk leaves the
// nodes patched so far flagged.
func (s *treeService) Archive(ctx context.Context, documentID, userID string) (*models.Document, error) {
	if _, err := s.getOwned(ctx, documentID, userID); err != nil {
		return nil, err
	}

	archived := true
	patched, err := s.docRepo.Patch(ctx, documentID, &repositories.DocumentPatch{IsArchived: &archived})
	if err != nil {
		return nil, err
	}

	if err := s.propagate(ctx, userID, documentID, func(p *repositories.DocumentPatch) {
		v := true
		p.IsArchived = &v
	}); err != nil {
		return nil, err
	}

	s.logger.Info("document archived", "id", documentID, "user_id", userID)

	return patched, nil
}

// Restore clears the archived flag on the target and its subtree. When the
// target's parent is itself still archived the target is detached to root
// level instead of reappearing under a hidden parent.
func (s *treeService) Restore(ctx context.Context, documentID, userID string) (*models.Document, error) {
	doc, err := s.getOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}

	archived := false
	patch := &repositories.DocumentPatch{IsArchived: &archived}
	if doc.ParentID != nil {
		parent, err := s.docRepo.GetByID(ctx, *doc.ParentID)
		if err == nil && parent.IsArchived {
			patch.ClearParent = true
		}
	}

	patched, err := s.docRepo.Patch(ctx, documentID, patch)
	if err != nil {
		return nil, err
	}

	if err := s.propagate(ctx, userID, documentID, func(p *repositories.DocumentPatch) {
		v := false
		p.IsArchived = &v
	}); err != nil {
		return nil, err
	}

	s.logger.Info("document restored", "id", documentID, "user_id", userID, "detached", patch.ClearParent)

	return patched, nil
}

// Pin flags the target and its whole subtree as pinned.
func (s *treeService) Pin(ctx context.Context, documentID, userID string) (*models.Document, error) {
	return s.setPinned(ctx, documentID, userID, true)
}

// Unpin clears the pinned flag on the target and its whole subtree.
func (s *treeService) Unpin(ctx context.Context, documentID, userID string) (*models.Document, error) {
	return s.setPinned(ctx, documentID, userID, false)
}

func (s *treeService) setPinned(ctx context.Context, documentID, userID string, pinned bool) (*models.Document, error) {
	if _, err := s.getOwned(ctx, documentID, userID); err != nil {
		return nil, err
	}

	patched, err := s.docRepo.Patch(ctx, documentID, &repositories.DocumentPatch{IsPinned: &pinned})
	if err != nil {
		return nil, err
	}

	if err := s.propagate(ctx, userID, documentID, func(p *repositories.DocumentPatch) {
		v := pinned
		p.IsPinned = &v
	}); err != nil {
		return nil, err
	}

	s.logger.Info("document pin changed", "id", documentID, "user_id", userID, "pinned", pinned)

	return patched, nil
}

// Reorder writes the caller-supplied sibling order as-is.
func (s *treeService) Reorder(ctx context.Context, documentID string, newOrder int, userID string) (*models.Document, error) {
	if _, err := s.getOwned(ctx, documentID, userID); err != nil {
		return nil, err
	}

	return s.docRepo.Patch(ctx, documentID, &repositories.DocumentPatch{Order: &newOrder})
}

// ListSidebar returns the non-archived, non-pinned direct children of parentID.
func (s *treeService) ListSidebar(ctx context.Context, userID string, parentID *string) ([]models.Document, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	children, err := s.docRepo.Children(ctx, userID, parentID)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0, len(children))
	for _, doc := range children {
		if !doc.IsArchived && !doc.IsPinned {
			docs = append(docs, doc)
		}
	}
	sortForDisplay(docs)

	return docs, nil
}

// ListPinned returns every pinned, non-archived document of the owner.
func (s *treeService) ListPinned(ctx context.Context, userID string) ([]models.Document, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	all, err := s.docRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0)
	for _, doc := range all {
		if doc.IsPinned && !doc.IsArchived {
			docs = append(docs, doc)
		}
	}
	sortForDisplay(docs)

	return docs, nil
}

// ListTrash returns the owner's archived documents, newest first.
func (s *treeService) ListTrash(ctx context.Context, userID string) ([]models.Document, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	all, err := s.docRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0)
	for _, doc := range all {
		if doc.IsArchived {
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

// Search returns the owner's non-archived, non-pinned documents, newest first.
func (s *treeService) Search(ctx context.Context, userID string) ([]models.Document, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	all, err := s.docRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0)
	for _, doc := range all {
		if !doc.IsArchived && !doc.IsPinned {
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

// GetByID resolves a document for an identified or anonymous caller.
func (s *treeService) GetByID(ctx context.Context, documentID, userID string) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// Published, non-archived documents are world-readable.
	if doc.IsPublished && !doc.IsArchived {
		return doc, nil
	}

	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if doc.UserID != userID {
		return nil, domain.ErrForbidden
	}

	return doc, nil
}

// Update patches a document. Owners may touch any allowed field. A non-owner
// may touch only content, and only while the document is published, not
// archived and open for editing; a public-edit attempt that carries no content
// change returns the document unmodified.
func (s *treeService) Update(ctx context.Context, documentID, userID string, req *docsvc.UpdateRequest) (*models.Document, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Length(1, config.MaxDocumentTitleLength),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if userID != "" && doc.UserID == userID {
		patch := &repositories.DocumentPatch{
			Title:        req.Title,
			Content:      req.Content,
			CoverImage:   req.CoverImage,
			Icon:         req.Icon,
			IsPublished:  req.IsPublished,
			AllowEditing: req.AllowEditing,
		}
		return s.docRepo.Patch(ctx, documentID, patch)
	}

	if doc.IsPublished && !doc.IsArchived && doc.AllowEditing {
		if req.Content == nil {
			return doc, nil
		}
		return s.docRepo.Patch(ctx, documentID, &repositories.DocumentPatch{Content: req.Content})
	}

	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	return nil, domain.ErrForbidden
}

// RemoveIcon clears the document's icon (owner only).
func (s *treeService) RemoveIcon(ctx context.Context, documentID, userID string) (*models.Document, error) {
	if _, err := s.getOwned(ctx, documentID, userID); err != nil {
		return nil, err
	}

	return s.docRepo.Patch(ctx, documentID, &repositories.DocumentPatch{ClearIcon: true})
}

// RemoveCoverImage clears the document's cover image (owner only).
func (s *treeService) RemoveCoverImage(ctx context.Context, documentID, userID string) (*models.Document, error) {
	if _, err := s.getOwned(ctx, documentID, userID); err != nil {
		return nil, err
	}

	return s.docRepo.Patch(ctx, documentID, &repositories.DocumentPatch{ClearCoverImage: true})
}

// Remove deletes a single document. Children keep their parent reference.
func (s *treeService) Remove(ctx context.Context, documentID, userID string) error {
	if _, err := s.getOwned(ctx, documentID, userID); err != nil {
		return err
	}

	if err := s.docRepo.Delete(ctx, documentID); err != nil {
		return err
	}

	s.logger.Info("document deleted", "id", documentID, "user_id", userID)

	return nil
}

// RemoveAllArchived empties the owner's trash and returns the count.
func (s *treeService) RemoveAllArchived(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, domain.ErrUnauthorized
	}

	count, err := s.docRepo.DeleteArchivedByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("trash emptied", "user_id", userID, "deleted", count)

	return count, nil
}

// getOwned fetches a document and requires the caller to be its owner.
func (s *treeService) getOwned(ctx context.Context, documentID, userID string) (*models.Document, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, domain.ErrForbidden
	}

	return doc, nil
}

// nextSiblingOrder returns max sibling order + 1 within the (owner, parent,
// pinned) partition. The max starts at zero, so the first sibling gets 1.
func (s *treeService) nextSiblingOrder(ctx context.Context, userID string, parentID *string, pinned bool) (int, error) {
	siblings, err := s.docRepo.Children(ctx, userID, parentID)
	if err != nil {
		return 0, err
	}

	max := 0
	for _, sibling := range siblings {
		if sibling.IsPinned != pinned {
			continue
		}
		if sibling.Order != nil && *sibling.Order > max {
			max = *sibling.Order
		}
	}

	return max + 1, nil
}

// propagate applies apply to a fresh patch for every descendant of rootID,
// walking the (owner, parent) index with an explicit worklist.
func (s *treeService) propagate(ctx context.Context, userID, rootID string, apply func(*repositories.DocumentPatch)) error {
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := s.docRepo.Children(ctx, userID, &id)
		if err != nil {
			return err
		}
		for _, child := range children {
			patch := &repositories.DocumentPatch{}
			apply(patch)
			if _, err := s.docRepo.Patch(ctx, child.ID, patch); err != nil {
				return err
			}
			stack = append(stack, child.ID)
		}
	}

	return nil
}

// sortForDisplay orders documents by sibling order ascending with unset
// orders last, breaking ties newest first.
func sortForDisplay(docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		switch {
		case a.Order != nil && b.Order != nil:
			if *a.Order != *b.Order {
				return *a.Order < *b.Order
			}
		case a.Order != nil:
			return true
		case b.Order != nil:
			return false
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

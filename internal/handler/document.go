package handler

import (
	"context"
	"log/slog"
	"net/http"

	"minote/internal/domain/models"
	docsvc "minote/internal/domain/services/document"
	"minote/internal/httputil"
)

// DocumentHandler handles document HTTP requests
// Handlers only communicate with services, never repositories
type DocumentHandler struct {
	docService docsvc.Service
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService docsvc.Service, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// HealthCheck reports service liveness
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateDocument creates a new document
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req docsvc.CreateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.CallerID(r)

	doc, err := h.docService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// Search lists the caller's active, unpinned documents, newest first
// GET /api/documents
func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.Search(r.Context(), httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// Sidebar lists direct children for the sidebar tree level
// GET /api/documents/sidebar?parent_id=:id
func (h *DocumentHandler) Sidebar(w http.ResponseWriter, r *http.Request) {
	var parentID *string
	if p := r.URL.Query().Get("parent_id"); p != "" {
		parentID = &p
	}

	docs, err := h.docService.ListSidebar(r.Context(), httputil.CallerID(r), parentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// Pinned lists every pinned document of the caller
// GET /api/documents/pinned
func (h *DocumentHandler) Pinned(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListPinned(r.Context(), httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// Trash lists the caller's archived documents
// GET /api/documents/trash
func (h *DocumentHandler) Trash(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListTrash(r.Context(), httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// EmptyTrash bulk-deletes the caller's archived documents
// DELETE /api/documents/trash
func (h *DocumentHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	count, err := h.docService.RemoveAllArchived(r.Context(), httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"deleted": count})
}

// GetDocument retrieves a document by ID. Anonymous callers reach published
// documents through this same route.
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	doc, err := h.docService.GetByID(r.Context(), id, httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument patches a document
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var req docsvc.UpdateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.docService.Update(r.Context(), id, httputil.CallerID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a single document
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	if err := h.docService.Remove(r.Context(), id, httputil.CallerID(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Archive flags a subtree as archived
// POST /api/documents/{id}/archive
func (h *DocumentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.subtreeAction(w, r, h.docService.Archive)
}

// Restore clears the archived flag on a subtree
// POST /api/documents/{id}/restore
func (h *DocumentHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.subtreeAction(w, r, h.docService.Restore)
}

// Pin flags a subtree as pinned
// POST /api/documents/{id}/pin
func (h *DocumentHandler) Pin(w http.ResponseWriter, r *http.Request) {
	h.subtreeAction(w, r, h.docService.Pin)
}

// Unpin clears the pinned flag on a subtree
// POST /api/documents/{id}/unpin
func (h *DocumentHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	h.subtreeAction(w, r, h.docService.Unpin)
}

// Reorder writes a new sibling order key
// POST /api/documents/{id}/reorder
func (h *DocumentHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var req struct {
		Order int `json:"order"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.docService.Reorder(r.Context(), id, req.Order, httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// RemoveIcon clears the document's icon
// DELETE /api/documents/{id}/icon
func (h *DocumentHandler) RemoveIcon(w http.ResponseWriter, r *http.Request) {
	h.subtreeAction(w, r, h.docService.RemoveIcon)
}

// RemoveCoverImage clears the document's cover image
// DELETE /api/documents/{id}/cover
func (h *DocumentHandler) RemoveCoverImage(w http.ResponseWriter, r *http.Request) {
	h.subtreeAction(w, r, h.docService.RemoveCoverImage)
}

func (h *DocumentHandler) subtreeAction(w http.ResponseWriter, r *http.Request, action func(context.Context, string, string) (*models.Document, error)) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	doc, err := action(r.Context(), id, httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}
